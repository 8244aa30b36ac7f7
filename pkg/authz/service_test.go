package authz

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksphere-backend/pkg/models"
)

func newTestService(store *fakeStore) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, log)
}

// The gate can only narrow: for every caller and action the role check
// denies, the composed authorize-then-gate decision stays a deny in every
// protection state.
func TestGateNeverGrants(t *testing.T) {
	store := newFakeStore()
	store.addChain("o1", "p1", "b1", "c1", "card1")
	store.addMember("viewer", "o1", models.RoleViewer)
	svc := newTestService(store)
	ctx := context.Background()

	states := []models.ProjectProtection{
		{},
		{DataProtected: true},
		{DataProtected: true, SignOffRequested: true},
		{DataProtected: true, SignOffRequested: true, SignOffApproved: true},
	}

	// compose mirrors the handler pipeline: the gate runs only after an
	// allow, so a role-check deny is final.
	compose := func(callerID string, action Action) Decision {
		d, err := svc.Authorize(ctx, callerID, ResourceRef{ResourceCard, "card1"}, action)
		require.NoError(t, err)
		if !d.Allowed {
			return d
		}
		g, err := svc.CheckProtection(ctx, d.Role, "p1", action, []string{"title"})
		require.NoError(t, err)
		return g
	}

	for _, caller := range []string{"viewer", "outsider"} {
		for _, action := range []Action{ActionDeleteCard, ActionDeleteBoard, ActionUpdateCard} {
			for _, flags := range states {
				store.flags["p1"] = flags
				d := compose(caller, action)
				assert.Falsef(t, d.Allowed, "%s gained %s via the gate in state %+v", caller, action, flags)
			}
		}
	}
}

// Scenario: sign-off pending blocks board deletion even for the owner,
// though the role check alone allows it.
func TestScenarioSignOffPendingOwner(t *testing.T) {
	store := newFakeStore()
	store.addChain("o1", "p1", "b1", "c1", "card1")
	store.addMember("u1", "o1", models.RoleOwner)
	store.flags["p1"] = models.ProjectProtection{DataProtected: true, SignOffRequested: true}
	svc := newTestService(store)
	ctx := context.Background()

	d, err := svc.Authorize(ctx, "u1", ResourceRef{ResourceBoard, "b1"}, ActionDeleteBoard)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	g, err := svc.CheckProtection(ctx, d.Role, "p1", ActionDeleteBoard, nil)
	require.NoError(t, err)
	assert.False(t, g.Allowed)
	assert.Equal(t, ReasonSignOffPending, g.Reason)
}

// Scenario: during review, an owner's mixed-field card update passes while
// the identical update from a member is denied naming the offending field.
func TestScenarioReviewUpdateByRole(t *testing.T) {
	store := newFakeStore()
	store.addChain("o1", "p1", "b1", "c1", "card1")
	store.addMember("u1", "o1", models.RoleOwner)
	store.addMember("u2", "o1", models.RoleMember)
	store.flags["p1"] = models.ProjectProtection{DataProtected: true, SignOffRequested: true}
	svc := newTestService(store)
	ctx := context.Background()
	fields := []string{"title", "status"}

	for _, tc := range []struct {
		caller  string
		allowed bool
	}{
		{"u1", true},
		{"u2", false},
	} {
		d, err := svc.Authorize(ctx, tc.caller, ResourceRef{ResourceCard, "card1"}, ActionUpdateCard)
		require.NoError(t, err)
		require.True(t, d.Allowed)

		g, err := svc.CheckProtection(ctx, d.Role, "p1", ActionUpdateCard, fields)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, g.Allowed, "caller %s", tc.caller)
		if !tc.allowed {
			assert.Equal(t, []string{"title"}, g.RestrictedFields)
		}
	}
}

func TestServiceValidateAssignment(t *testing.T) {
	store := newFakeStore()
	store.addMember("caller", "o1", models.RoleMember)
	store.addMember("t1", "o1", models.RoleMember)
	svc := newTestService(store)

	res, err := svc.ValidateAssignment(context.Background(), "caller", "o1", []string{"t1", "ghost"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "ghost", res.InvalidUserID)
	assert.Equal(t, ReasonTargetNotMember, res.Reason)
}
