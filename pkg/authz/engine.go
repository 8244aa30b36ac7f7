package authz

import (
	"context"

	"worksphere-backend/pkg/models"
)

// MembershipStore is the read-only view of memberships the engine needs.
// MemberRole returns ok=false when the user has no membership in the
// organization; that is a normal deny, never an error.
type MembershipStore interface {
	MemberRole(ctx context.Context, userID, orgID string) (models.OrgMemberRole, bool, error)
	CountOwners(ctx context.Context, orgID string) (int, error)
}

// Engine composes the hierarchy resolver, membership store and capability
// matrix into a single authorization decision.
type Engine struct {
	members  MembershipStore
	resolver *Resolver
	matrix   CapabilityMatrix
}

// NewEngine builds an engine. The matrix is treated as immutable after this
// call.
func NewEngine(members MembershipStore, resolver *Resolver, matrix CapabilityMatrix) *Engine {
	return &Engine{members: members, resolver: resolver, matrix: matrix}
}

// Authorize decides whether caller may perform action on the resource.
// Identical inputs against the same store snapshot always yield identical
// decisions. The returned error is reserved for store failures and hierarchy
// corruption; membership absence and capability misses come back as denials.
func (e *Engine) Authorize(ctx context.Context, callerID string, ref ResourceRef, action Action) (Decision, error) {
	orgID, err := e.resolver.ResolveOrganization(ctx, ref)
	if err != nil {
		return Decision{}, err
	}

	role, ok, err := e.members.MemberRole(ctx, callerID, orgID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Deny(ReasonNotAMember, "not a member of this organization"), nil
	}

	if !e.matrix.Allows(role, action) {
		d := Deny(ReasonInsufficientRole, "role '"+string(role)+"' may not "+string(action))
		d.Role = role
		d.OrganizationID = orgID
		return d, nil
	}

	return Allow(role, orgID), nil
}
