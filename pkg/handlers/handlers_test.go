package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "worksphere-backend/api"
	"worksphere-backend/pkg/config"
	"worksphere-backend/pkg/database"
	"worksphere-backend/pkg/models"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details string   `json:"details"`
		Fields  []string `json:"fields"`
	} `json:"error"`
}

// testEnv runs the real router over the in-memory store, with users
// authenticated through the actual register/login/JWT path.
type testEnv struct {
	t      *testing.T
	router *chi.Mux
	db     *database.MemoryDatabase
	tokens map[string]string // email -> access token
	users  map[string]string // email -> user id
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		UseLocalDB:     true,
		JWTSecret:      "test-secret",
		AllowedOrigins: []string{"*"},
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	db := database.NewMemoryDatabase()
	return &testEnv{
		t:      t,
		router: handler.NewRouter(cfg, db, log),
		db:     db,
		tokens: make(map[string]string),
		users:  make(map[string]string),
	}
}

// register creates an account through the API and stores its token.
func (e *testEnv) register(email string) string {
	e.t.Helper()
	rec := e.do("", http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &env))
	var login models.UserLoginResponse
	require.NoError(e.t, json.Unmarshal(env.Data, &login))

	e.tokens[email] = login.AccessToken
	e.users[email] = login.User.ID
	return login.User.ID
}

func (e *testEnv) do(email, method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[email])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// seedWorkspace registers owner/admin/member/viewer accounts and builds
// org -> project -> board -> column, returning the ids.
func (e *testEnv) seedWorkspace() (orgID, projectID, boardID, columnID string) {
	e.t.Helper()
	ctx := context.Background()

	ownerID := e.register("owner@acme.test")
	for _, email := range []string{"admin@acme.test", "member@acme.test", "viewer@acme.test", "outsider@acme.test"} {
		e.register(email)
	}

	rec := e.do("owner@acme.test", http.MethodPost, "/api/orgs/", map[string]string{"name": "Acme"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var org models.Organization
	require.NoError(e.t, json.Unmarshal(decode(e.t, rec).Data, &org))

	for email, role := range map[string]models.OrgMemberRole{
		"admin@acme.test":  models.RoleAdmin,
		"member@acme.test": models.RoleMember,
		"viewer@acme.test": models.RoleViewer,
	} {
		require.NoError(e.t, e.db.AddOrganizationMember(ctx, &models.OrganizationMembership{
			OrganizationID: org.ID,
			UserID:         e.users[email],
			Role:           role,
			InvitedBy:      ownerID,
		}))
	}

	rec = e.do("admin@acme.test", http.MethodPost, "/api/orgs/"+org.ID+"/projects", map[string]string{"name": "Launch"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var project models.Project
	require.NoError(e.t, json.Unmarshal(decode(e.t, rec).Data, &project))

	rec = e.do("member@acme.test", http.MethodPost, "/api/projects/"+project.ID+"/boards", map[string]string{"name": "Sprint"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var board models.Board
	require.NoError(e.t, json.Unmarshal(decode(e.t, rec).Data, &board))

	rec = e.do("member@acme.test", http.MethodPost, "/api/boards/"+board.ID+"/columns", map[string]string{"name": "Todo"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var column models.Column
	require.NoError(e.t, json.Unmarshal(decode(e.t, rec).Data, &column))

	return org.ID, project.ID, board.ID, column.ID
}

func (e *testEnv) createCard(columnID, title string) models.Card {
	e.t.Helper()
	rec := e.do("member@acme.test", http.MethodPost, "/api/columns/"+columnID+"/cards", map[string]string{"title": title})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var card models.Card
	require.NoError(e.t, json.Unmarshal(decode(e.t, rec).Data, &card))
	return card
}

func (e *testEnv) setProtection(projectID string, flags models.ProjectProtection) {
	e.t.Helper()
	project, err := e.db.GetProject(context.Background(), projectID)
	require.NoError(e.t, err)
	project.DataProtected = flags.DataProtected
	project.ProtectionReason = flags.ProtectionReason
	project.SignOffRequested = flags.SignOffRequested
	project.SignOffApproved = flags.SignOffApproved
	require.NoError(e.t, e.db.UpdateProject(context.Background(), project))
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	e.register("user@acme.test")

	rec := e.do("", http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "user@acme.test",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do("", http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "user@acme.test",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCardCreateByRole(t *testing.T) {
	e := newTestEnv(t)
	_, _, _, columnID := e.seedWorkspace()

	rec := e.do("member@acme.test", http.MethodPost, "/api/columns/"+columnID+"/cards", map[string]string{"title": "Ship"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do("viewer@acme.test", http.MethodPost, "/api/columns/"+columnID+"/cards", map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", decode(t, rec).Error.Code)

	rec = e.do("outsider@acme.test", http.MethodPost, "/api/columns/"+columnID+"/cards", map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_A_MEMBER", decode(t, rec).Error.Code)
}

func TestMissingCardIs404(t *testing.T) {
	e := newTestEnv(t)
	e.seedWorkspace()

	rec := e.do("member@acme.test", http.MethodGet, "/api/cards/no-such-card/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardDeleteThroughProtectionStates(t *testing.T) {
	e := newTestEnv(t)
	_, projectID, _, columnID := e.seedWorkspace()

	// Open project: member may delete.
	card := e.createCard(columnID, "disposable")
	rec := e.do("member@acme.test", http.MethodDelete, "/api/cards/"+card.ID+"/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Protected: non-owner denied with the recorded reason, owner passes.
	card = e.createCard(columnID, "precious")
	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, ProtectionReason: "Audit hold"})

	rec = e.do("admin@acme.test", http.MethodDelete, "/api/cards/"+card.ID+"/", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "DATA_PROTECTED", env.Error.Code)
	assert.Equal(t, "Audit hold", env.Error.Message)

	// Review pending: even the owner is locked out.
	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, SignOffRequested: true})
	rec = e.do("owner@acme.test", http.MethodDelete, "/api/cards/"+card.ID+"/", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "SIGN_OFF_PENDING", decode(t, rec).Error.Code)

	// Review approved: the owner may proceed.
	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, SignOffRequested: true, SignOffApproved: true})
	rec = e.do("owner@acme.test", http.MethodDelete, "/api/cards/"+card.ID+"/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCardUpdateFieldRestrictionDuringReview(t *testing.T) {
	e := newTestEnv(t)
	_, projectID, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "under review")

	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, SignOffRequested: true})

	// Non-owner touching a locked field is denied and told which fields.
	rec := e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"title":  "renamed",
		"status": "doing",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "RESTRICTED_FIELDS", env.Error.Code)
	assert.Equal(t, []string{"title"}, env.Error.Fields)

	// Status and position stay editable for workflow progress.
	rec = e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"status":   "doing",
		"position": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Owners update any field during review.
	rec = e.do("owner@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"title": "owner renamed",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAssigneeChangeRestrictedDuringReview(t *testing.T) {
	e := newTestEnv(t)
	_, projectID, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "handover")

	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, SignOffRequested: true})

	// Reassignment is a card edit outside the review allow-list.
	rec := e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"assigned_to": []string{e.users["admin@acme.test"]},
	})
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "RESTRICTED_FIELDS", env.Error.Code)
	assert.Equal(t, []string{"assigned_to"}, env.Error.Fields)

	assignments, err := e.db.ListCardAssignments(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	// Owners may still reassign during review.
	rec = e.do("owner@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"assigned_to": []string{e.users["admin@acme.test"]},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assignments, err = e.db.ListCardAssignments(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestAssignmentAllOrNothing(t *testing.T) {
	e := newTestEnv(t)
	_, _, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "assign me")

	rec := e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"assigned_to": []string{e.users["admin@acme.test"], e.users["outsider@acme.test"]},
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "TARGET_NOT_A_MEMBER", decode(t, rec).Error.Code)

	// Nothing was assigned.
	assignments, err := e.db.ListCardAssignments(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	rec = e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/", map[string]interface{}{
		"assigned_to": []string{e.users["admin@acme.test"], e.users["viewer@acme.test"]},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assignments, err = e.db.ListCardAssignments(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestMoveCardStaysOnBoard(t *testing.T) {
	e := newTestEnv(t)
	_, projectID, boardID, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "mover")

	rec := e.do("member@acme.test", http.MethodPost, "/api/boards/"+boardID+"/columns", map[string]string{"name": "Doing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var doing models.Column
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &doing))

	rec = e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/move", map[string]interface{}{
		"column_id": doing.ID,
		"position":  0,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A column on a different board is rejected.
	rec = e.do("member@acme.test", http.MethodPost, "/api/projects/"+projectID+"/boards", map[string]string{"name": "Other"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var other models.Board
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &other))

	rec = e.do("member@acme.test", http.MethodPost, "/api/boards/"+other.ID+"/columns", map[string]string{"name": "Elsewhere"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var elsewhere models.Column
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &elsewhere))

	rec = e.do("member@acme.test", http.MethodPut, "/api/cards/"+card.ID+"/move", map[string]interface{}{
		"column_id": elsewhere.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardDeleteRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	_, _, boardID, _ := e.seedWorkspace()

	rec := e.do("member@acme.test", http.MethodDelete, "/api/boards/"+boardID+"/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", decode(t, rec).Error.Code)

	rec = e.do("admin@acme.test", http.MethodDelete, "/api/boards/"+boardID+"/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLastOwnerGuards(t *testing.T) {
	e := newTestEnv(t)
	orgID, _, _, _ := e.seedWorkspace()
	ownerID := e.users["owner@acme.test"]

	// The sole owner cannot be removed.
	rec := e.do("owner@acme.test", http.MethodDelete,
		fmt.Sprintf("/api/orgs/%s/members/%s", orgID, ownerID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "LAST_OWNER", decode(t, rec).Error.Code)

	// Nor demoted.
	rec = e.do("owner@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, ownerID),
		map[string]string{"role": "admin"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "LAST_OWNER", decode(t, rec).Error.Code)

	// With a second owner both operations go through.
	rec = e.do("owner@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, e.users["admin@acme.test"]),
		map[string]string{"role": "owner"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do("owner@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, ownerID),
		map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestOwnerRoleDelegation(t *testing.T) {
	e := newTestEnv(t)
	orgID, _, _, _ := e.seedWorkspace()

	// Admins may not grant owner.
	rec := e.do("admin@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, e.users["member@acme.test"]),
		map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins may change non-owner roles.
	rec = e.do("admin@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, e.users["viewer@acme.test"]),
		map[string]string{"role": "member"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Members may not manage membership at all.
	rec = e.do("member@acme.test", http.MethodPut,
		fmt.Sprintf("/api/orgs/%s/members/%s/role", orgID, e.users["viewer@acme.test"]),
		map[string]string{"role": "viewer"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInviteExistingUserJoinsDirectly(t *testing.T) {
	e := newTestEnv(t)
	orgID, _, _, _ := e.seedWorkspace()

	rec := e.do("admin@acme.test", http.MethodPost, "/api/orgs/"+orgID+"/invite", map[string]string{
		"email": "outsider@acme.test",
		"role":  "member",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	role, ok, err := e.db.MemberRole(context.Background(), e.users["outsider@acme.test"], orgID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.RoleMember, role)
}

func TestInvitationFlowForNewEmail(t *testing.T) {
	e := newTestEnv(t)
	orgID, _, _, _ := e.seedWorkspace()

	rec := e.do("owner@acme.test", http.MethodPost, "/api/orgs/"+orgID+"/invite", map[string]string{
		"email": "newcomer@acme.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv models.OrganizationInvitation
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &inv))
	require.NotEmpty(t, inv.Token)

	e.register("newcomer@acme.test")

	rec = e.do("newcomer@acme.test", http.MethodGet, "/api/invitations/my", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do("newcomer@acme.test", http.MethodPost, "/api/invitations/accept", map[string]string{
		"token": inv.Token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	role, ok, err := e.db.MemberRole(context.Background(), e.users["newcomer@acme.test"], orgID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.RoleMember, role)

	// The token is single-use.
	rec = e.do("newcomer@acme.test", http.MethodPost, "/api/invitations/accept", map[string]string{
		"token": inv.Token,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChecklistLifecycle(t *testing.T) {
	e := newTestEnv(t)
	_, _, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "with checklist")

	rec := e.do("member@acme.test", http.MethodPost, "/api/cards/"+card.ID+"/checklist", map[string]string{
		"text": "write tests",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.ChecklistItem
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &item))

	rec = e.do("member@acme.test", http.MethodPut,
		"/api/cards/"+card.ID+"/checklist/"+item.ID, map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.ChecklistItem
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.True(t, updated.Completed)

	// An item id from another card does not resolve under this card.
	other := e.createCard(columnID, "other card")
	rec = e.do("member@acme.test", http.MethodPut,
		"/api/cards/"+other.ID+"/checklist/"+item.ID, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do("member@acme.test", http.MethodDelete,
		"/api/cards/"+card.ID+"/checklist/"+item.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items, err := e.db.ListChecklistItems(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChecklistEditsRestrictedDuringReview(t *testing.T) {
	e := newTestEnv(t)
	_, projectID, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "review checklist")

	rec := e.do("member@acme.test", http.MethodPost, "/api/cards/"+card.ID+"/checklist", map[string]string{
		"text": "pre-review item",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.ChecklistItem
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &item))

	e.setProtection(projectID, models.ProjectProtection{DataProtected: true, SignOffRequested: true})

	// Non-owner checklist mutations are locked like any other card edit.
	rec = e.do("member@acme.test", http.MethodPost, "/api/cards/"+card.ID+"/checklist", map[string]string{
		"text": "mid-review item",
	})
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.Equal(t, "RESTRICTED_FIELDS", decode(t, rec).Error.Code)

	rec = e.do("member@acme.test", http.MethodPut,
		"/api/cards/"+card.ID+"/checklist/"+item.ID, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do("member@acme.test", http.MethodDelete,
		"/api/cards/"+card.ID+"/checklist/"+item.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owners remain unrestricted.
	rec = e.do("owner@acme.test", http.MethodPut,
		"/api/cards/"+card.ID+"/checklist/"+item.ID, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestOrganizationDeleteOwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	orgID, _, _, columnID := e.seedWorkspace()
	card := e.createCard(columnID, "doomed")

	rec := e.do("admin@acme.test", http.MethodDelete, "/api/orgs/"+orgID+"/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", decode(t, rec).Error.Code)

	rec = e.do("owner@acme.test", http.MethodDelete, "/api/orgs/"+orgID+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The cascade reached the leaves.
	_, err := e.db.GetCard(context.Background(), card.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	e := newTestEnv(t)
	e.seedWorkspace()

	rec := e.do("", http.MethodGet, "/api/orgs/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
