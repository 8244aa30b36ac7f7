package authz

import (
	"context"
	"sort"
	"strings"

	"worksphere-backend/pkg/models"
)

// ProtectionState is the per-project compliance state derived from the four
// protection flags. Transitions are driven by the external sign-off
// workflow; the gate only reads.
type ProtectionState int

const (
	StateOpen ProtectionState = iota
	StateProtected
	StateReviewPending
	StateReviewApproved
)

func (s ProtectionState) String() string {
	switch s {
	case StateProtected:
		return "protected"
	case StateReviewPending:
		return "review_pending"
	case StateReviewApproved:
		return "review_approved"
	default:
		return "open"
	}
}

// StateOf derives the protection state from a flag snapshot.
func StateOf(f models.ProjectProtection) ProtectionState {
	switch {
	case !f.DataProtected:
		return StateOpen
	case !f.SignOffRequested:
		return StateProtected
	case !f.SignOffApproved:
		return StateReviewPending
	default:
		return StateReviewApproved
	}
}

// FlagsSource reads a project's protection flags. ok=false means the project
// does not exist.
type FlagsSource interface {
	ProjectFlags(ctx context.Context, projectID string) (models.ProjectProtection, bool, error)
}

// CardReviewFields is the allow-list of card fields non-owners may still
// update while a sign-off review is pending.
var CardReviewFields = []string{"position", "status"}

// destructive actions are the ones the gate blocks outright on protected
// projects.
var destructiveActions = map[Action]bool{
	ActionDeleteCard:    true,
	ActionDeleteBoard:   true,
	ActionDeleteProject: true,
}

// Gate enforces the data-protection and sign-off policy on top of an
// authorization decision. It must run after a positive Authorize and can
// only narrow an allow into a deny.
type Gate struct {
	flags FlagsSource
}

// NewGate returns a gate reading flags from the given source.
func NewGate(flags FlagsSource) *Gate {
	return &Gate{flags: flags}
}

// Check evaluates the gate for an already-authorized action. role is the
// caller's role established by the engine; updateFields is the set of fields
// a card update touches, nil for non-update actions.
//
// The flags are a snapshot taken at decision time; they can be flipped by the
// sign-off workflow between this read and the mutation commit. Delete
// handlers re-check immediately before the destructive call, which narrows
// the window but does not close it without a transactional write path.
func (g *Gate) Check(ctx context.Context, role models.OrgMemberRole, projectID string, action Action, updateFields []string) (Decision, error) {
	flags, ok, err := g.flags.ProjectFlags(ctx, projectID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{}, danglingErr(ResourceRef{Type: ResourceProject, ID: projectID})
	}

	state := StateOf(flags)

	if destructiveActions[action] && state != StateOpen {
		if role != models.RoleOwner {
			reason := flags.ProtectionReason
			if reason == "" {
				reason = "Data protection enabled"
			}
			return Deny(ReasonDataProtected, reason), nil
		}
		if state == StateReviewPending {
			return Deny(ReasonSignOffPending, "project is pending sign-off approval"), nil
		}
	}

	if action == ActionUpdateCard && state == StateReviewPending && role != models.RoleOwner {
		if offending := restrictedFields(updateFields); len(offending) > 0 {
			d := Deny(ReasonRestrictedFields, strings.Join(offending, ", "))
			d.RestrictedFields = offending
			d.AllowedFields = CardReviewFields
			return d, nil
		}
		d := Allow(role, "")
		d.AllowedFields = CardReviewFields
		return d, nil
	}

	return Allow(role, ""), nil
}

// restrictedFields returns the update fields outside the review allow-list,
// sorted for stable output.
func restrictedFields(updateFields []string) []string {
	allowed := make(map[string]bool, len(CardReviewFields))
	for _, f := range CardReviewFields {
		allowed[f] = true
	}
	var offending []string
	for _, f := range updateFields {
		if !allowed[f] {
			offending = append(offending, f)
		}
	}
	sort.Strings(offending)
	return offending
}
