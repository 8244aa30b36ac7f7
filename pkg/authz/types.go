package authz

import (
	"errors"
	"fmt"

	"worksphere-backend/pkg/models"
)

// Action names a permitted operation, resolved per role via the capability
// matrix.
type Action string

const (
	ActionView               Action = "view"
	ActionCreateCard         Action = "create_card"
	ActionUpdateCard         Action = "update_card"
	ActionDeleteCard         Action = "delete_card"
	ActionMoveCard           Action = "move_card"
	ActionCreateBoard        Action = "create_board"
	ActionUpdateBoard        Action = "update_board"
	ActionDeleteBoard        Action = "delete_board"
	ActionCreateColumn       Action = "create_column"
	ActionUpdateColumn       Action = "update_column"
	ActionDeleteColumn       Action = "delete_column"
	ActionCreateProject      Action = "create_project"
	ActionUpdateProject      Action = "update_project"
	ActionDeleteProject      Action = "delete_project"
	ActionAssignTask         Action = "assign_task"
	ActionInviteMember       Action = "invite_member"
	ActionRemoveMember       Action = "remove_member"
	ActionChangeRole         Action = "change_role"
	ActionUpdateOrganization Action = "update_organization"
	ActionDeleteOrganization Action = "delete_organization"
)

// ResourceType identifies a level of the containment hierarchy.
type ResourceType string

const (
	ResourceOrganization ResourceType = "organization"
	ResourceProject      ResourceType = "project"
	ResourceBoard        ResourceType = "board"
	ResourceColumn       ResourceType = "column"
	ResourceCard         ResourceType = "card"
)

// ResourceRef is a typed reference to a resource at any hierarchy level.
type ResourceRef struct {
	Type ResourceType `json:"type"`
	ID   string       `json:"id"`
}

func (r ResourceRef) String() string {
	return string(r.Type) + "/" + r.ID
}

// DenyReason is a machine-readable code explaining a denial.
type DenyReason string

const (
	ReasonNotAMember       DenyReason = "not_a_member"
	ReasonInsufficientRole DenyReason = "insufficient_role"
	ReasonDataProtected    DenyReason = "data_protected"
	ReasonSignOffPending   DenyReason = "signoff_pending"
	ReasonRestrictedFields DenyReason = "restricted_fields"
	ReasonTargetNotMember  DenyReason = "target_not_a_member"
)

// Decision is the structured result of an authorization or gate check.
// Denials carry a reason code plus optional human-readable detail; the
// presentation layer maps these to status codes and messages.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Detail  string     `json:"detail,omitempty"`

	// RestrictedFields names the offending fields on a restricted_fields
	// denial; AllowedFields is the gate's allow-list when one applies.
	RestrictedFields []string `json:"restricted_fields,omitempty"`
	AllowedFields    []string `json:"allowed_fields,omitempty"`

	// Role and OrganizationID are populated on Allow so callers can run
	// the rest of the pipeline without repeating lookups.
	Role           models.OrgMemberRole `json:"role,omitempty"`
	OrganizationID string               `json:"organization_id,omitempty"`
}

// Allow builds an allowing decision carrying the resolved role and owning
// organization.
func Allow(role models.OrgMemberRole, orgID string) Decision {
	return Decision{Allowed: true, Role: role, OrganizationID: orgID}
}

// Deny builds a denying decision.
func Deny(reason DenyReason, detail string) Decision {
	return Decision{Allowed: false, Reason: reason, Detail: detail}
}

// ErrDanglingReference reports a missing parent link in the hierarchy. It is
// an internal-consistency failure, not an access decision, and must surface
// as an error rather than a Deny so it reaches the operational alert path.
var ErrDanglingReference = errors.New("dangling hierarchy reference")

// ErrHierarchyDepth reports a hierarchy walk that exceeded the schema depth,
// which only happens if the containment tree is corrupted into a cycle.
var ErrHierarchyDepth = errors.New("hierarchy traversal exceeded schema depth")

// danglingErr wraps ErrDanglingReference with the reference that failed.
func danglingErr(ref ResourceRef) error {
	return fmt.Errorf("%w: %s has no parent", ErrDanglingReference, ref)
}
