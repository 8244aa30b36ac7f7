package authz

import (
	"context"

	"worksphere-backend/pkg/models"
)

// fakeStore is an in-memory Store for exercising the core without a
// database.
type fakeStore struct {
	roles   map[string]models.OrgMemberRole // userID + "/" + orgID
	owners  map[string]int
	parents map[ResourceRef]ResourceRef
	flags   map[string]models.ProjectProtection
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:   make(map[string]models.OrgMemberRole),
		owners:  make(map[string]int),
		parents: make(map[ResourceRef]ResourceRef),
		flags:   make(map[string]models.ProjectProtection),
	}
}

func (f *fakeStore) addMember(userID, orgID string, role models.OrgMemberRole) {
	f.roles[userID+"/"+orgID] = role
	if role == models.RoleOwner {
		f.owners[orgID]++
	}
}

// addChain wires card -> column -> board -> project -> organization parent
// links for one fully-populated branch of the tree.
func (f *fakeStore) addChain(orgID, projectID, boardID, columnID, cardID string) {
	f.parents[ResourceRef{ResourceCard, cardID}] = ResourceRef{ResourceColumn, columnID}
	f.parents[ResourceRef{ResourceColumn, columnID}] = ResourceRef{ResourceBoard, boardID}
	f.parents[ResourceRef{ResourceBoard, boardID}] = ResourceRef{ResourceProject, projectID}
	f.parents[ResourceRef{ResourceProject, projectID}] = ResourceRef{ResourceOrganization, orgID}
	f.flags[projectID] = models.ProjectProtection{}
}

func (f *fakeStore) MemberRole(_ context.Context, userID, orgID string) (models.OrgMemberRole, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.roles[userID+"/"+orgID]
	return role, ok, nil
}

func (f *fakeStore) CountOwners(_ context.Context, orgID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.owners[orgID], nil
}

func (f *fakeStore) ResourceParent(_ context.Context, ref ResourceRef) (ResourceRef, bool, error) {
	if f.err != nil {
		return ResourceRef{}, false, f.err
	}
	parent, ok := f.parents[ref]
	return parent, ok, nil
}

func (f *fakeStore) ProjectFlags(_ context.Context, projectID string) (models.ProjectProtection, bool, error) {
	if f.err != nil {
		return models.ProjectProtection{}, false, f.err
	}
	flags, ok := f.flags[projectID]
	return flags, ok, nil
}
