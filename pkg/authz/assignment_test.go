package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksphere-backend/pkg/models"
)

func newTestValidator(store *fakeStore) *AssignmentValidator {
	return NewAssignmentValidator(store, DefaultMatrix())
}

func TestValidateAssignmentAllMembers(t *testing.T) {
	store := newFakeStore()
	store.addMember("caller", "org1", models.RoleMember)
	store.addMember("t1", "org1", models.RoleMember)
	store.addMember("t2", "org1", models.RoleViewer)
	v := newTestValidator(store)

	res, err := v.Validate(context.Background(), "caller", "org1", []string{"t1", "t2"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.InvalidUserID)
}

func TestValidateAssignmentTargetOutsideOrg(t *testing.T) {
	store := newFakeStore()
	store.addMember("caller", "org1", models.RoleAdmin)
	store.addMember("t1", "org1", models.RoleMember)
	v := newTestValidator(store)

	res, err := v.Validate(context.Background(), "caller", "org1", []string{"t1", "stranger", "t1"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "stranger", res.InvalidUserID)
	assert.Equal(t, ReasonTargetNotMember, res.Reason)
}

func TestValidateAssignmentCallerNotMember(t *testing.T) {
	store := newFakeStore()
	store.addMember("t1", "org1", models.RoleMember)
	v := newTestValidator(store)

	res, err := v.Validate(context.Background(), "outsider", "org1", []string{"t1"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotAMember, res.Reason)
}

func TestValidateAssignmentViewerCannotAssign(t *testing.T) {
	store := newFakeStore()
	store.addMember("caller", "org1", models.RoleViewer)
	store.addMember("t1", "org1", models.RoleMember)
	v := newTestValidator(store)

	res, err := v.Validate(context.Background(), "caller", "org1", []string{"t1"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonInsufficientRole, res.Reason)
}

func TestValidateAssignmentEmptyTargetsValid(t *testing.T) {
	store := newFakeStore()
	store.addMember("caller", "org1", models.RoleMember)
	v := newTestValidator(store)

	res, err := v.Validate(context.Background(), "caller", "org1", nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
