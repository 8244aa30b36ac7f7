package database

import (
	"context"
	"errors"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DatabaseInterface defines storage access for the service. Every method
// takes a context so in-flight lookups are abandoned when the enclosing
// request is cancelled. Implementations also satisfy the authz collaborator
// interfaces (MemberRole, CountOwners, ResourceParent, ProjectFlags).
type DatabaseInterface interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Organizations
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, orgID string) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	// DeleteOrganization cascades to all contained resources.
	DeleteOrganization(ctx context.Context, orgID string) error
	ListUserOrganizations(ctx context.Context, userID string) ([]models.Organization, error)

	// Memberships
	AddOrganizationMember(ctx context.Context, m *models.OrganizationMembership) error
	RemoveOrganizationMember(ctx context.Context, orgID, userID string) error
	UpdateMemberRole(ctx context.Context, orgID, userID string, role models.OrgMemberRole) error
	ListOrganizationMembers(ctx context.Context, orgID string) ([]models.OrganizationMembership, error)
	// MemberRole returns ok=false when the user is not a member; that is a
	// deny for the authorization engine, never an error.
	MemberRole(ctx context.Context, userID, orgID string) (models.OrgMemberRole, bool, error)
	CountOwners(ctx context.Context, orgID string) (int, error)

	// Invitations
	CreateInvitation(ctx context.Context, inv *models.OrganizationInvitation) error
	GetInvitationByToken(ctx context.Context, token string) (*models.OrganizationInvitation, error)
	ListInvitationsByEmail(ctx context.Context, email string) ([]models.OrganizationInvitation, error)
	UpdateInvitation(ctx context.Context, inv *models.OrganizationInvitation) error

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, projectID string) error
	ListProjectsByOrganization(ctx context.Context, orgID string) ([]models.Project, error)
	// ProjectFlags reads the protection-flag snapshot the gate evaluates.
	ProjectFlags(ctx context.Context, projectID string) (models.ProjectProtection, bool, error)

	// Boards
	CreateBoard(ctx context.Context, b *models.Board) error
	GetBoard(ctx context.Context, boardID string) (*models.Board, error)
	UpdateBoard(ctx context.Context, b *models.Board) error
	DeleteBoard(ctx context.Context, boardID string) error
	ListBoardsByProject(ctx context.Context, projectID string) ([]models.Board, error)

	// Columns
	CreateColumn(ctx context.Context, c *models.Column) error
	GetColumn(ctx context.Context, columnID string) (*models.Column, error)
	UpdateColumn(ctx context.Context, c *models.Column) error
	DeleteColumn(ctx context.Context, columnID string) error
	ListColumnsByBoard(ctx context.Context, boardID string) ([]models.Column, error)

	// Cards
	CreateCard(ctx context.Context, c *models.Card) error
	GetCard(ctx context.Context, cardID string) (*models.Card, error)
	UpdateCard(ctx context.Context, c *models.Card) error
	DeleteCard(ctx context.Context, cardID string) error
	ListCardsByColumn(ctx context.Context, columnID string) ([]models.Card, error)

	// Card assignments: replacement is all-or-nothing per update request.
	ReplaceCardAssignments(ctx context.Context, cardID, assignedBy string, userIDs []string) error
	ListCardAssignments(ctx context.Context, cardID string) ([]models.CardAssignment, error)

	// Checklist items
	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	ListChecklistItems(ctx context.Context, cardID string) ([]models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, itemID string) error

	// ResourceParent resolves one upward hop in the containment hierarchy
	// for the authz resolver. ok=false means the resource or its parent
	// link is missing.
	ResourceParent(ctx context.Context, ref authz.ResourceRef) (authz.ResourceRef, bool, error)

	HealthCheck(ctx context.Context) error
	Close() error
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	UseLocalDB  bool
	PostgresDSN string
	Debug       bool
}

// NewDatabase picks the backend from configuration: Postgres when a DSN is
// set, otherwise the in-memory store (development and tests only).
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	if config.PostgresDSN != "" && !config.UseLocalDB {
		return NewPostgresDatabase(config.PostgresDSN)
	}
	if config.UseLocalDB {
		return NewMemoryDatabase(), nil
	}
	return nil, errors.New("no database configured: set POSTGRES_DSN or USE_LOCAL_DB=true")
}
