package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksphere-backend/pkg/models"
)

func newTestEngine(store *fakeStore) *Engine {
	return NewEngine(store, NewResolver(store), DefaultMatrix())
}

func TestAuthorizeAllowsMemberOnCard(t *testing.T) {
	store := newFakeStore()
	store.addChain("org1", "proj1", "board1", "col1", "card1")
	store.addMember("u2", "org1", models.RoleMember)
	e := newTestEngine(store)

	d, err := e.Authorize(context.Background(), "u2", ResourceRef{ResourceCard, "card1"}, ActionDeleteCard)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, models.RoleMember, d.Role)
	assert.Equal(t, "org1", d.OrganizationID)
}

func TestAuthorizeFailsClosedForNonMembers(t *testing.T) {
	store := newFakeStore()
	store.addChain("org1", "proj1", "board1", "col1", "card1")
	store.addMember("insider", "org1", models.RoleOwner)
	e := newTestEngine(store)

	// A user with no membership is denied every action, including view.
	for _, action := range allActions {
		d, err := e.Authorize(context.Background(), "outsider", ResourceRef{ResourceCard, "card1"}, action)
		require.NoError(t, err)
		assert.Falsef(t, d.Allowed, "outsider allowed %s", action)
		assert.Equal(t, ReasonNotAMember, d.Reason)
	}
}

func TestAuthorizeInsufficientRole(t *testing.T) {
	store := newFakeStore()
	store.addChain("org1", "proj1", "board1", "col1", "card1")
	store.addMember("u3", "org1", models.RoleViewer)
	e := newTestEngine(store)

	d, err := e.Authorize(context.Background(), "u3", ResourceRef{ResourceCard, "card1"}, ActionUpdateCard)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}

func TestAuthorizeDeterministic(t *testing.T) {
	store := newFakeStore()
	store.addChain("org1", "proj1", "board1", "col1", "card1")
	store.addMember("u1", "org1", models.RoleAdmin)
	e := newTestEngine(store)

	first, err := e.Authorize(context.Background(), "u1", ResourceRef{ResourceBoard, "board1"}, ActionDeleteBoard)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Authorize(context.Background(), "u1", ResourceRef{ResourceBoard, "board1"}, ActionDeleteBoard)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAuthorizePropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.addChain("org1", "proj1", "board1", "col1", "card1")
	store.err = errors.New("connection reset")
	e := newTestEngine(store)

	_, err := e.Authorize(context.Background(), "u1", ResourceRef{ResourceCard, "card1"}, ActionView)
	assert.Error(t, err)
}

func TestAuthorizeDanglingReferenceIsError(t *testing.T) {
	store := newFakeStore()
	store.addMember("u1", "org1", models.RoleOwner)
	e := newTestEngine(store)

	// Card exists in no hierarchy: must be an error, never an allow.
	_, err := e.Authorize(context.Background(), "u1", ResourceRef{ResourceCard, "ghost"}, ActionView)
	assert.ErrorIs(t, err, ErrDanglingReference)
}
