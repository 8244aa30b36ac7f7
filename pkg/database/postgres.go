package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/models"
)

// PostgresDatabase is the production storage backend.
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase opens a connection pool against the given DSN and
// verifies it with a ping.
func NewPostgresDatabase(dsn string) (*PostgresDatabase, error) {
	// Stray CR/LF from env values breaks lib/pq DSN parsing.
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDatabase{db: db}, nil
}

// newPostgresWithDB wraps an existing handle; used by tests with sqlmock.
func newPostgresWithDB(db *sql.DB) *PostgresDatabase {
	return &PostgresDatabase{db: db}
}

// --- Users ---

func (d *PostgresDatabase) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, avatar_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Password, user.FirstName, user.LastName, user.AvatarURL, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, COALESCE(avatar_url, ''), is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := d.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (d *PostgresDatabase) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, COALESCE(avatar_url, ''), is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (d *PostgresDatabase) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, avatar_url = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.AvatarURL, user.IsActive,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// --- Organizations ---

func (d *PostgresDatabase) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	query := `
		INSERT INTO organizations (id, name, description, allowed_domains, contact_email, logo_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		org.ID, org.Name, org.Description, pq.Array(org.AllowedDomains), org.ContactEmail, org.LogoURL, org.CreatedBy,
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), allowed_domains, COALESCE(contact_email, ''), COALESCE(logo_url, ''), created_by, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var org models.Organization
	err := d.db.QueryRowContext(ctx, query, orgID).Scan(
		&org.ID, &org.Name, &org.Description, pq.Array(&org.AllowedDomains),
		&org.ContactEmail, &org.LogoURL, &org.CreatedBy, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (d *PostgresDatabase) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, description = $3, allowed_domains = $4, contact_email = $5, logo_url = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		org.ID, org.Name, org.Description, pq.Array(org.AllowedDomains), org.ContactEmail, org.LogoURL,
	).Scan(&org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteOrganization(ctx context.Context, orgID string) error {
	// Schema declares ON DELETE CASCADE down the containment chain.
	res, err := d.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListUserOrganizations(ctx context.Context, userID string) ([]models.Organization, error) {
	query := `
		SELECT o.id, o.name, COALESCE(o.description, ''), o.allowed_domains, COALESCE(o.contact_email, ''), COALESCE(o.logo_url, ''), o.created_by, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.created_at
	`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(
			&org.ID, &org.Name, &org.Description, pq.Array(&org.AllowedDomains),
			&org.ContactEmail, &org.LogoURL, &org.CreatedBy, &org.CreatedAt, &org.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// --- Memberships ---

func (d *PostgresDatabase) AddOrganizationMember(ctx context.Context, m *models.OrganizationMembership) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	query := `
		INSERT INTO organization_members (id, organization_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
		RETURNING joined_at
	`
	err := d.db.QueryRowContext(ctx, query,
		m.ID, m.OrganizationID, m.UserID, string(m.Role), m.InvitedBy,
	).Scan(&m.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add organization member: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) RemoveOrganizationMember(ctx context.Context, orgID, userID string) error {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove organization member: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) UpdateMemberRole(ctx context.Context, orgID, userID string, role models.OrgMemberRole) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE organization_members SET role = $3 WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListOrganizationMembers(ctx context.Context, orgID string) ([]models.OrganizationMembership, error) {
	query := `
		SELECT id, organization_id, user_id, role, COALESCE(invited_by::text, ''), joined_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY joined_at
	`
	rows, err := d.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	defer rows.Close()

	var members []models.OrganizationMembership
	for rows.Next() {
		var m models.OrganizationMembership
		var role string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &m.InvitedBy, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Role = models.OrgMemberRole(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (d *PostgresDatabase) MemberRole(ctx context.Context, userID, orgID string) (models.OrgMemberRole, bool, error) {
	var role string
	err := d.db.QueryRowContext(ctx,
		`SELECT role FROM organization_members WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get member role: %w", err)
	}
	return models.OrgMemberRole(role), true, nil
}

func (d *PostgresDatabase) CountOwners(ctx context.Context, orgID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM organization_members WHERE organization_id = $1 AND role = 'owner'`,
		orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}

// --- Invitations ---

func (d *PostgresDatabase) CreateInvitation(ctx context.Context, inv *models.OrganizationInvitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	query := `
		INSERT INTO organization_invitations (id, organization_id, email, role, token, status, inviter_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		inv.ID, inv.OrganizationID, inv.Email, string(inv.Role), inv.Token, string(inv.Status), inv.InviterID, inv.ExpiresAt,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetInvitationByToken(ctx context.Context, token string) (*models.OrganizationInvitation, error) {
	query := `
		SELECT id, organization_id, email, role, token, status, inviter_id, expires_at, accepted_by, created_at, updated_at
		FROM organization_invitations
		WHERE token = $1
	`
	var inv models.OrganizationInvitation
	var role, status string
	err := d.db.QueryRowContext(ctx, query, token).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &role, &inv.Token, &status,
		&inv.InviterID, &inv.ExpiresAt, &inv.AcceptedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	inv.Role = models.OrgMemberRole(role)
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}

func (d *PostgresDatabase) ListInvitationsByEmail(ctx context.Context, email string) ([]models.OrganizationInvitation, error) {
	query := `
		SELECT id, organization_id, email, role, token, status, inviter_id, expires_at, accepted_by, created_at, updated_at
		FROM organization_invitations
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := d.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invs []models.OrganizationInvitation
	for rows.Next() {
		var inv models.OrganizationInvitation
		var role, status string
		if err := rows.Scan(
			&inv.ID, &inv.OrganizationID, &inv.Email, &role, &inv.Token, &status,
			&inv.InviterID, &inv.ExpiresAt, &inv.AcceptedBy, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.Role = models.OrgMemberRole(role)
		inv.Status = models.InvitationStatus(status)
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (d *PostgresDatabase) UpdateInvitation(ctx context.Context, inv *models.OrganizationInvitation) error {
	query := `
		UPDATE organization_invitations
		SET status = $2, accepted_by = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query, inv.ID, string(inv.Status), inv.AcceptedBy).Scan(&inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	return nil
}

// --- Projects ---

func (d *PostgresDatabase) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `
		INSERT INTO projects (id, organization_id, name, description, status, priority, data_protected, protection_reason, sign_off_requested, sign_off_approved, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		p.ID, p.OrganizationID, p.Name, p.Description, p.Status, p.Priority,
		p.DataProtected, p.ProtectionReason, p.SignOffRequested, p.SignOffApproved, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	query := `
		SELECT id, organization_id, name, COALESCE(description, ''), status, priority,
		       data_protected, COALESCE(protection_reason, ''), sign_off_requested, sign_off_approved,
		       created_by, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	var p models.Project
	err := d.db.QueryRowContext(ctx, query, projectID).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Status, &p.Priority,
		&p.DataProtected, &p.ProtectionReason, &p.SignOffRequested, &p.SignOffApproved,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (d *PostgresDatabase) UpdateProject(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, priority = $5,
		    data_protected = $6, protection_reason = $7, sign_off_requested = $8, sign_off_approved = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Description, p.Status, p.Priority,
		p.DataProtected, p.ProtectionReason, p.SignOffRequested, p.SignOffApproved,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteProject(ctx context.Context, projectID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListProjectsByOrganization(ctx context.Context, orgID string) ([]models.Project, error) {
	query := `
		SELECT id, organization_id, name, COALESCE(description, ''), status, priority,
		       data_protected, COALESCE(protection_reason, ''), sign_off_requested, sign_off_approved,
		       created_by, created_at, updated_at
		FROM projects
		WHERE organization_id = $1
		ORDER BY created_at
	`
	rows, err := d.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Status, &p.Priority,
			&p.DataProtected, &p.ProtectionReason, &p.SignOffRequested, &p.SignOffApproved,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (d *PostgresDatabase) ProjectFlags(ctx context.Context, projectID string) (models.ProjectProtection, bool, error) {
	query := `
		SELECT data_protected, COALESCE(protection_reason, ''), sign_off_requested, sign_off_approved
		FROM projects
		WHERE id = $1
	`
	var flags models.ProjectProtection
	err := d.db.QueryRowContext(ctx, query, projectID).Scan(
		&flags.DataProtected, &flags.ProtectionReason, &flags.SignOffRequested, &flags.SignOffApproved,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ProjectProtection{}, false, nil
		}
		return models.ProjectProtection{}, false, fmt.Errorf("failed to get project flags: %w", err)
	}
	return flags, true, nil
}

// --- Boards ---

func (d *PostgresDatabase) CreateBoard(ctx context.Context, b *models.Board) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	query := `
		INSERT INTO boards (id, project_id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		b.ID, b.ProjectID, b.Name, b.Description, b.CreatedBy,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetBoard(ctx context.Context, boardID string) (*models.Board, error) {
	query := `
		SELECT id, project_id, name, COALESCE(description, ''), created_by, created_at, updated_at
		FROM boards
		WHERE id = $1
	`
	var b models.Board
	err := d.db.QueryRowContext(ctx, query, boardID).Scan(
		&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return &b, nil
}

func (d *PostgresDatabase) UpdateBoard(ctx context.Context, b *models.Board) error {
	query := `
		UPDATE boards
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query, b.ID, b.Name, b.Description).Scan(&b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update board: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteBoard(ctx context.Context, boardID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, boardID)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListBoardsByProject(ctx context.Context, projectID string) ([]models.Board, error) {
	query := `
		SELECT id, project_id, name, COALESCE(description, ''), created_by, created_at, updated_at
		FROM boards
		WHERE project_id = $1
		ORDER BY created_at
	`
	rows, err := d.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// --- Columns ---

func (d *PostgresDatabase) CreateColumn(ctx context.Context, c *models.Column) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO board_columns (id, board_id, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query, c.ID, c.BoardID, c.Name, c.Position).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetColumn(ctx context.Context, columnID string) (*models.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at
		FROM board_columns
		WHERE id = $1
	`
	var c models.Column
	err := d.db.QueryRowContext(ctx, query, columnID).Scan(
		&c.ID, &c.BoardID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	return &c, nil
}

func (d *PostgresDatabase) UpdateColumn(ctx context.Context, c *models.Column) error {
	query := `
		UPDATE board_columns
		SET name = $2, position = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Position).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update column: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteColumn(ctx context.Context, columnID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM board_columns WHERE id = $1`, columnID)
	if err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListColumnsByBoard(ctx context.Context, boardID string) ([]models.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at
		FROM board_columns
		WHERE board_id = $1
		ORDER BY position
	`
	rows, err := d.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	var cols []models.Column
	for rows.Next() {
		var c models.Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// --- Cards ---

func (d *PostgresDatabase) CreateCard(ctx context.Context, c *models.Card) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO cards (id, column_id, title, description, status, priority, position, due_date, labels, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		c.ID, c.ColumnID, c.Title, c.Description, c.Status, c.Priority, c.Position,
		c.DueDate, pq.Array(c.Labels), c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	query := `
		SELECT id, column_id, title, COALESCE(description, ''), status, priority, position, due_date, labels, created_by, created_at, updated_at
		FROM cards
		WHERE id = $1
	`
	var c models.Card
	err := d.db.QueryRowContext(ctx, query, cardID).Scan(
		&c.ID, &c.ColumnID, &c.Title, &c.Description, &c.Status, &c.Priority, &c.Position,
		&c.DueDate, pq.Array(&c.Labels), &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

func (d *PostgresDatabase) UpdateCard(ctx context.Context, c *models.Card) error {
	query := `
		UPDATE cards
		SET column_id = $2, title = $3, description = $4, status = $5, priority = $6,
		    position = $7, due_date = $8, labels = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		c.ID, c.ColumnID, c.Title, c.Description, c.Status, c.Priority,
		c.Position, c.DueDate, pq.Array(c.Labels),
	).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteCard(ctx context.Context, cardID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireRowAffected(res)
}

func (d *PostgresDatabase) ListCardsByColumn(ctx context.Context, columnID string) ([]models.Card, error) {
	query := `
		SELECT id, column_id, title, COALESCE(description, ''), status, priority, position, due_date, labels, created_by, created_at, updated_at
		FROM cards
		WHERE column_id = $1
		ORDER BY position
	`
	rows, err := d.db.QueryContext(ctx, query, columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(
			&c.ID, &c.ColumnID, &c.Title, &c.Description, &c.Status, &c.Priority, &c.Position,
			&c.DueDate, pq.Array(&c.Labels), &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ReplaceCardAssignments swaps the card's assignee set in one transaction so
// a failed insert never leaves a partial assignment behind.
func (d *PostgresDatabase) ReplaceCardAssignments(ctx context.Context, cardID, assignedBy string, userIDs []string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_assignments WHERE card_id = $1`, cardID); err != nil {
		return fmt.Errorf("failed to clear card assignments: %w", err)
	}
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO card_assignments (id, card_id, user_id, assigned_by, assigned_at) VALUES ($1, $2, $3, $4, NOW())`,
			uuid.NewString(), cardID, userID, assignedBy)
		if err != nil {
			return fmt.Errorf("failed to insert card assignment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card assignments: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) ListCardAssignments(ctx context.Context, cardID string) ([]models.CardAssignment, error) {
	query := `
		SELECT id, card_id, user_id, assigned_by, assigned_at
		FROM card_assignments
		WHERE card_id = $1
		ORDER BY assigned_at
	`
	rows, err := d.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.CardAssignment
	for rows.Next() {
		var a models.CardAssignment
		if err := rows.Scan(&a.ID, &a.CardID, &a.UserID, &a.AssignedBy, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// --- Checklist items ---

func (d *PostgresDatabase) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO checklist_items (id, card_id, text, completed, position, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := d.db.QueryRowContext(ctx, query,
		item.ID, item.CardID, item.Text, item.Completed, item.Position, item.CreatedBy,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) ListChecklistItems(ctx context.Context, cardID string) ([]models.ChecklistItem, error) {
	query := `
		SELECT id, card_id, text, completed, position, created_by, created_at, updated_at
		FROM checklist_items
		WHERE card_id = $1
		ORDER BY position
	`
	rows, err := d.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var item models.ChecklistItem
		if err := rows.Scan(
			&item.ID, &item.CardID, &item.Text, &item.Completed, &item.Position,
			&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (d *PostgresDatabase) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	query := `
		UPDATE checklist_items
		SET text = $2, completed = $3, position = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.db.QueryRowContext(ctx, query, item.ID, item.Text, item.Completed, item.Position).Scan(&item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return nil
}

func (d *PostgresDatabase) DeleteChecklistItem(ctx context.Context, itemID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	return requireRowAffected(res)
}

// --- Hierarchy ---

// parentQueries maps each child level to the query returning its parent's id.
var parentQueries = map[authz.ResourceType]struct {
	parentType authz.ResourceType
	query      string
}{
	authz.ResourceProject: {authz.ResourceOrganization, `SELECT organization_id FROM projects WHERE id = $1`},
	authz.ResourceBoard:   {authz.ResourceProject, `SELECT project_id FROM boards WHERE id = $1`},
	authz.ResourceColumn:  {authz.ResourceBoard, `SELECT board_id FROM board_columns WHERE id = $1`},
	authz.ResourceCard:    {authz.ResourceColumn, `SELECT column_id FROM cards WHERE id = $1`},
}

// ResourceParent resolves one containment hop. An organization has no parent;
// a missing row reports ok=false so the resolver can fail closed.
func (d *PostgresDatabase) ResourceParent(ctx context.Context, ref authz.ResourceRef) (authz.ResourceRef, bool, error) {
	hop, ok := parentQueries[ref.Type]
	if !ok {
		return authz.ResourceRef{}, false, nil
	}
	var parentID string
	err := d.db.QueryRowContext(ctx, hop.query, ref.ID).Scan(&parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return authz.ResourceRef{}, false, nil
		}
		return authz.ResourceRef{}, false, fmt.Errorf("failed to resolve parent of %s: %w", ref, err)
	}
	return authz.ResourceRef{Type: hop.parentType, ID: parentID}, true, nil
}

func (d *PostgresDatabase) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *PostgresDatabase) Close() error {
	return d.db.Close()
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
