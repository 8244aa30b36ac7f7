package authz

import "context"

// AssignmentResult reports whether a set of assignment targets is valid.
// Assignment is all-or-nothing: the first invalid target aborts the whole
// request, and InvalidUserID names it.
type AssignmentResult struct {
	Valid         bool       `json:"valid"`
	InvalidUserID string     `json:"invalid_user_id,omitempty"`
	Reason        DenyReason `json:"reason,omitempty"`
	Detail        string     `json:"detail,omitempty"`
}

// AssignmentValidator checks that every target of a card assignment is a
// member of the owning organization and that the caller may assign at all.
type AssignmentValidator struct {
	members MembershipStore
	matrix  CapabilityMatrix
}

// NewAssignmentValidator builds a validator over the given membership store
// and matrix.
func NewAssignmentValidator(members MembershipStore, matrix CapabilityMatrix) *AssignmentValidator {
	return &AssignmentValidator{members: members, matrix: matrix}
}

// Validate checks the caller's assign capability and each target's
// membership, in order. Targets are checked against the organization that
// owns the card, which the caller resolves before invoking this.
func (v *AssignmentValidator) Validate(ctx context.Context, callerID, orgID string, targetUserIDs []string) (AssignmentResult, error) {
	callerRole, ok, err := v.members.MemberRole(ctx, callerID, orgID)
	if err != nil {
		return AssignmentResult{}, err
	}
	if !ok {
		return AssignmentResult{
			Valid:  false,
			Reason: ReasonNotAMember,
			Detail: "caller is not a member of this organization",
		}, nil
	}
	if !v.matrix.Allows(callerRole, ActionAssignTask) {
		return AssignmentResult{
			Valid:  false,
			Reason: ReasonInsufficientRole,
			Detail: "role '" + string(callerRole) + "' may not assign tasks",
		}, nil
	}

	for _, target := range targetUserIDs {
		_, ok, err := v.members.MemberRole(ctx, target, orgID)
		if err != nil {
			return AssignmentResult{}, err
		}
		if !ok {
			return AssignmentResult{
				Valid:         false,
				InvalidUserID: target,
				Reason:        ReasonTargetNotMember,
				Detail:        "user is not a member of this organization",
			}, nil
		}
	}

	return AssignmentResult{Valid: true}, nil
}
