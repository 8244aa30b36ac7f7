package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/models"
)

func newMockDB(t *testing.T) (*PostgresDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newPostgresWithDB(db), mock
}

func TestMemberRoleFound(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT role FROM organization_members`).
		WithArgs("org1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	role, ok, err := pg.MemberRole(context.Background(), "u1", "org1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRoleAbsentIsNotAnError(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT role FROM organization_members`).
		WithArgs("org1", "outsider").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, ok, err := pg.MemberRole(context.Background(), "outsider", "org1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, role)
}

func TestCountOwners(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM organization_members`).
		WithArgs("org1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := pg.CountOwners(context.Background(), "org1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProjectFlagsMissingProject(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT data_protected`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"data_protected", "protection_reason", "sign_off_requested", "sign_off_approved"}))

	_, ok, err := pg.ProjectFlags(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjectFlagsSnapshot(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT data_protected`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"data_protected", "protection_reason", "sign_off_requested", "sign_off_approved"}).
			AddRow(true, "Audit hold", true, false))

	flags, ok, err := pg.ProjectFlags(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.ProjectProtection{
		DataProtected:    true,
		ProtectionReason: "Audit hold",
		SignOffRequested: true,
	}, flags)
}

func TestResourceParentHops(t *testing.T) {
	pg, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT column_id FROM cards`).
		WithArgs("card1").
		WillReturnRows(sqlmock.NewRows([]string{"column_id"}).AddRow("col1"))
	mock.ExpectQuery(`SELECT board_id FROM board_columns`).
		WithArgs("col1").
		WillReturnRows(sqlmock.NewRows([]string{"board_id"}).AddRow("b1"))

	ctx := context.Background()
	parent, ok, err := pg.ResourceParent(ctx, authz.ResourceRef{Type: authz.ResourceCard, ID: "card1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, authz.ResourceRef{Type: authz.ResourceColumn, ID: "col1"}, parent)

	parent, ok, err = pg.ResourceParent(ctx, parent)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, authz.ResourceRef{Type: authz.ResourceBoard, ID: "b1"}, parent)
}

func TestResourceParentMissingRow(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT project_id FROM boards`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}))

	_, ok, err := pg.ResourceParent(context.Background(), authz.ResourceRef{Type: authz.ResourceBoard, ID: "ghost"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResourceParentOrganizationHasNoParent(t *testing.T) {
	pg, _ := newMockDB(t)

	_, ok, err := pg.ResourceParent(context.Background(), authz.ResourceRef{Type: authz.ResourceOrganization, ID: "o1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCardNotFound(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM cards`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := pg.DeleteCard(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceCardAssignmentsRollsBackOnFailure(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM card_assignments`).
		WithArgs("card1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO card_assignments`).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := pg.ReplaceCardAssignments(context.Background(), "card1", "caller", []string{"u1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceCardAssignmentsCommits(t *testing.T) {
	pg, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM card_assignments`).
		WithArgs("card1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO card_assignments`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO card_assignments`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := pg.ReplaceCardAssignments(context.Background(), "card1", "caller", []string{"u1", "u2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
