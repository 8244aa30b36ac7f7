package models

import "time"

// Organization is the tenant root that owns projects and memberships.
type Organization struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description,omitempty" db:"description"`
	AllowedDomains []string  `json:"allowed_domains,omitempty" db:"allowed_domains"`
	ContactEmail   string    `json:"contact_email,omitempty" db:"contact_email"`
	LogoURL        string    `json:"logo_url,omitempty" db:"logo_url"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// OrgMemberRole is the role a user holds within one organization.
// Roles form a strict rank: owner > admin > member > viewer.
type OrgMemberRole string

const (
	RoleOwner  OrgMemberRole = "owner"
	RoleAdmin  OrgMemberRole = "admin"
	RoleMember OrgMemberRole = "member"
	RoleViewer OrgMemberRole = "viewer"
)

// roleRanks maps roles to their position in the rank order. Unknown roles
// rank below viewer so they never gain capabilities by accident.
var roleRanks = map[OrgMemberRole]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleMember: 2,
	RoleViewer: 1,
}

// Rank returns the numeric rank of the role; 0 for unknown roles.
func (r OrgMemberRole) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the four defined roles.
func (r OrgMemberRole) Valid() bool {
	return roleRanks[r] > 0
}

// AtLeast reports whether r outranks or equals other.
func (r OrgMemberRole) AtLeast(other OrgMemberRole) bool {
	return r.Rank() >= other.Rank()
}

// OrganizationMembership relates users to organizations with a role.
// A user holds at most one membership per organization.
type OrganizationMembership struct {
	ID             string        `json:"id" db:"id"`
	OrganizationID string        `json:"organization_id" db:"organization_id"`
	UserID         string        `json:"user_id" db:"user_id"`
	Role           OrgMemberRole `json:"role" db:"role"`
	InvitedBy      string        `json:"invited_by,omitempty" db:"invited_by"`
	JoinedAt       time.Time     `json:"joined_at" db:"joined_at"`
}
