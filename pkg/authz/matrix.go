package authz

import "worksphere-backend/pkg/models"

// CapabilityMatrix maps (role, action) to allow/deny. The matrix is built
// once and never mutated; lookups on roles or actions it does not know
// return false, so unrecognized input fails closed.
type CapabilityMatrix map[models.OrgMemberRole]map[Action]bool

// Allows reports whether role may perform action.
func (m CapabilityMatrix) Allows(role models.OrgMemberRole, action Action) bool {
	caps, ok := m[role]
	if !ok {
		return false
	}
	return caps[action]
}

// DefaultMatrix returns the built-in capability table. Capabilities are
// monotonic in role rank: every action allowed to a role is allowed to all
// higher-ranked roles. delete_organization requires owner; granting or
// revoking the owner role is additionally restricted to owners by the
// delegation checks in the member handlers, on top of the base change_role
// capability here.
func DefaultMatrix() CapabilityMatrix {
	viewer := map[Action]bool{
		ActionView: true,
	}
	member := merge(viewer, map[Action]bool{
		ActionCreateCard:   true,
		ActionUpdateCard:   true,
		ActionDeleteCard:   true,
		ActionMoveCard:     true,
		ActionCreateBoard:  true,
		ActionUpdateBoard:  true,
		ActionCreateColumn: true,
		ActionUpdateColumn: true,
		ActionAssignTask:   true,
	})
	admin := merge(member, map[Action]bool{
		ActionDeleteBoard:        true,
		ActionDeleteColumn:       true,
		ActionCreateProject:      true,
		ActionUpdateProject:      true,
		ActionDeleteProject:      true,
		ActionInviteMember:       true,
		ActionRemoveMember:       true,
		ActionChangeRole:         true,
		ActionUpdateOrganization: true,
	})
	owner := merge(admin, map[Action]bool{
		ActionDeleteOrganization: true,
	})

	return CapabilityMatrix{
		models.RoleViewer: viewer,
		models.RoleMember: member,
		models.RoleAdmin:  admin,
		models.RoleOwner:  owner,
	}
}

func merge(base, extra map[Action]bool) map[Action]bool {
	out := make(map[Action]bool, len(base)+len(extra))
	for a, v := range base {
		out[a] = v
	}
	for a, v := range extra {
		out[a] = v
	}
	return out
}
