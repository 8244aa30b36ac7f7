package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/models"
)

// MemoryDatabase is a map-backed store for development and tests. It mirrors
// PostgresDatabase behavior, including cascading deletes and ErrNotFound.
type MemoryDatabase struct {
	mu sync.RWMutex

	users          map[string]models.User
	usersByEmail   map[string]string
	organizations  map[string]models.Organization
	memberships    map[string]models.OrganizationMembership // keyed orgID+"/"+userID
	invitations    map[string]models.OrganizationInvitation
	projects       map[string]models.Project
	boards         map[string]models.Board
	columns        map[string]models.Column
	cards          map[string]models.Card
	assignments    map[string][]models.CardAssignment // keyed by card id
	checklistItems map[string]models.ChecklistItem
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		users:          make(map[string]models.User),
		usersByEmail:   make(map[string]string),
		organizations:  make(map[string]models.Organization),
		memberships:    make(map[string]models.OrganizationMembership),
		invitations:    make(map[string]models.OrganizationInvitation),
		projects:       make(map[string]models.Project),
		boards:         make(map[string]models.Board),
		columns:        make(map[string]models.Column),
		cards:          make(map[string]models.Card),
		assignments:    make(map[string][]models.CardAssignment),
		checklistItems: make(map[string]models.ChecklistItem),
	}
}

func membershipKey(orgID, userID string) string {
	return orgID + "/" + userID
}

// --- Users ---

func (m *MemoryDatabase) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryDatabase) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryDatabase) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryDatabase) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

// --- Organizations ---

func (m *MemoryDatabase) CreateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	org.CreatedAt, org.UpdatedAt = now, now
	m.organizations[org.ID] = *org
	return nil
}

func (m *MemoryDatabase) GetOrganization(_ context.Context, orgID string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[orgID]
	if !ok {
		return nil, ErrNotFound
	}
	return &org, nil
}

func (m *MemoryDatabase) UpdateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.organizations[org.ID]; !ok {
		return ErrNotFound
	}
	org.UpdatedAt = time.Now().UTC()
	m.organizations[org.ID] = *org
	return nil
}

func (m *MemoryDatabase) DeleteOrganization(_ context.Context, orgID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.organizations[orgID]; !ok {
		return ErrNotFound
	}
	delete(m.organizations, orgID)
	for key, mem := range m.memberships {
		if mem.OrganizationID == orgID {
			delete(m.memberships, key)
		}
	}
	for id, inv := range m.invitations {
		if inv.OrganizationID == orgID {
			delete(m.invitations, id)
		}
	}
	for id, p := range m.projects {
		if p.OrganizationID == orgID {
			m.deleteProjectLocked(id)
		}
	}
	return nil
}

func (m *MemoryDatabase) ListUserOrganizations(_ context.Context, userID string) ([]models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orgs []models.Organization
	for _, mem := range m.memberships {
		if mem.UserID != userID {
			continue
		}
		if org, ok := m.organizations[mem.OrganizationID]; ok {
			orgs = append(orgs, org)
		}
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })
	return orgs, nil
}

// --- Memberships ---

func (m *MemoryDatabase) AddOrganizationMember(_ context.Context, mem *models.OrganizationMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem.ID == "" {
		mem.ID = uuid.NewString()
	}
	mem.JoinedAt = time.Now().UTC()
	m.memberships[membershipKey(mem.OrganizationID, mem.UserID)] = *mem
	return nil
}

func (m *MemoryDatabase) RemoveOrganizationMember(_ context.Context, orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membershipKey(orgID, userID)
	if _, ok := m.memberships[key]; !ok {
		return ErrNotFound
	}
	delete(m.memberships, key)
	return nil
}

func (m *MemoryDatabase) UpdateMemberRole(_ context.Context, orgID, userID string, role models.OrgMemberRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membershipKey(orgID, userID)
	mem, ok := m.memberships[key]
	if !ok {
		return ErrNotFound
	}
	mem.Role = role
	m.memberships[key] = mem
	return nil
}

func (m *MemoryDatabase) ListOrganizationMembers(_ context.Context, orgID string) ([]models.OrganizationMembership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []models.OrganizationMembership
	for _, mem := range m.memberships {
		if mem.OrganizationID == orgID {
			members = append(members, mem)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (m *MemoryDatabase) MemberRole(_ context.Context, userID, orgID string) (models.OrgMemberRole, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mem, ok := m.memberships[membershipKey(orgID, userID)]
	if !ok {
		return "", false, nil
	}
	return mem.Role, true, nil
}

func (m *MemoryDatabase) CountOwners(_ context.Context, orgID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, mem := range m.memberships {
		if mem.OrganizationID == orgID && mem.Role == models.RoleOwner {
			n++
		}
	}
	return n, nil
}

// --- Invitations ---

func (m *MemoryDatabase) CreateInvitation(_ context.Context, inv *models.OrganizationInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now
	m.invitations[inv.ID] = *inv
	return nil
}

func (m *MemoryDatabase) GetInvitationByToken(_ context.Context, token string) (*models.OrganizationInvitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invitations {
		if inv.Token == token {
			out := inv
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryDatabase) ListInvitationsByEmail(_ context.Context, email string) ([]models.OrganizationInvitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var invs []models.OrganizationInvitation
	for _, inv := range m.invitations {
		if inv.Email == email && inv.Status == models.InvitationPending {
			invs = append(invs, inv)
		}
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].CreatedAt.After(invs[j].CreatedAt) })
	return invs, nil
}

func (m *MemoryDatabase) UpdateInvitation(_ context.Context, inv *models.OrganizationInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invitations[inv.ID]; !ok {
		return ErrNotFound
	}
	inv.UpdatedAt = time.Now().UTC()
	m.invitations[inv.ID] = *inv
	return nil
}

// --- Projects ---

func (m *MemoryDatabase) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryDatabase) GetProject(_ context.Context, projectID string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryDatabase) UpdateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryDatabase) DeleteProject(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return ErrNotFound
	}
	m.deleteProjectLocked(projectID)
	return nil
}

func (m *MemoryDatabase) deleteProjectLocked(projectID string) {
	delete(m.projects, projectID)
	for id, b := range m.boards {
		if b.ProjectID == projectID {
			m.deleteBoardLocked(id)
		}
	}
}

func (m *MemoryDatabase) ListProjectsByOrganization(_ context.Context, orgID string) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var projects []models.Project
	for _, p := range m.projects {
		if p.OrganizationID == orgID {
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.Before(projects[j].CreatedAt) })
	return projects, nil
}

func (m *MemoryDatabase) ProjectFlags(_ context.Context, projectID string) (models.ProjectProtection, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[projectID]
	if !ok {
		return models.ProjectProtection{}, false, nil
	}
	return p.Protection(), true, nil
}

// --- Boards ---

func (m *MemoryDatabase) CreateBoard(_ context.Context, b *models.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	m.boards[b.ID] = *b
	return nil
}

func (m *MemoryDatabase) GetBoard(_ context.Context, boardID string) (*models.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryDatabase) UpdateBoard(_ context.Context, b *models.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	m.boards[b.ID] = *b
	return nil
}

func (m *MemoryDatabase) DeleteBoard(_ context.Context, boardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[boardID]; !ok {
		return ErrNotFound
	}
	m.deleteBoardLocked(boardID)
	return nil
}

func (m *MemoryDatabase) deleteBoardLocked(boardID string) {
	delete(m.boards, boardID)
	for id, c := range m.columns {
		if c.BoardID == boardID {
			m.deleteColumnLocked(id)
		}
	}
}

func (m *MemoryDatabase) ListBoardsByProject(_ context.Context, projectID string) ([]models.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var boards []models.Board
	for _, b := range m.boards {
		if b.ProjectID == projectID {
			boards = append(boards, b)
		}
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].CreatedAt.Before(boards[j].CreatedAt) })
	return boards, nil
}

// --- Columns ---

func (m *MemoryDatabase) CreateColumn(_ context.Context, c *models.Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	m.columns[c.ID] = *c
	return nil
}

func (m *MemoryDatabase) GetColumn(_ context.Context, columnID string) (*models.Column, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.columns[columnID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryDatabase) UpdateColumn(_ context.Context, c *models.Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.columns[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	m.columns[c.ID] = *c
	return nil
}

func (m *MemoryDatabase) DeleteColumn(_ context.Context, columnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.columns[columnID]; !ok {
		return ErrNotFound
	}
	m.deleteColumnLocked(columnID)
	return nil
}

func (m *MemoryDatabase) deleteColumnLocked(columnID string) {
	delete(m.columns, columnID)
	for id, c := range m.cards {
		if c.ColumnID == columnID {
			m.deleteCardLocked(id)
		}
	}
}

func (m *MemoryDatabase) ListColumnsByBoard(_ context.Context, boardID string) ([]models.Column, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cols []models.Column
	for _, c := range m.columns {
		if c.BoardID == boardID {
			cols = append(cols, c)
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols, nil
}

// --- Cards ---

func (m *MemoryDatabase) CreateCard(_ context.Context, c *models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	m.cards[c.ID] = *c
	return nil
}

func (m *MemoryDatabase) GetCard(_ context.Context, cardID string) (*models.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cards[cardID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryDatabase) UpdateCard(_ context.Context, c *models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	m.cards[c.ID] = *c
	return nil
}

func (m *MemoryDatabase) DeleteCard(_ context.Context, cardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[cardID]; !ok {
		return ErrNotFound
	}
	m.deleteCardLocked(cardID)
	return nil
}

func (m *MemoryDatabase) deleteCardLocked(cardID string) {
	delete(m.cards, cardID)
	delete(m.assignments, cardID)
	for id, item := range m.checklistItems {
		if item.CardID == cardID {
			delete(m.checklistItems, id)
		}
	}
}

func (m *MemoryDatabase) ListCardsByColumn(_ context.Context, columnID string) ([]models.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []models.Card
	for _, c := range m.cards {
		if c.ColumnID == columnID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	return cards, nil
}

func (m *MemoryDatabase) ReplaceCardAssignments(_ context.Context, cardID, assignedBy string, userIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	assignments := make([]models.CardAssignment, 0, len(userIDs))
	for _, userID := range userIDs {
		assignments = append(assignments, models.CardAssignment{
			ID:         uuid.NewString(),
			CardID:     cardID,
			UserID:     userID,
			AssignedBy: assignedBy,
			AssignedAt: now,
		})
	}
	m.assignments[cardID] = assignments
	return nil
}

func (m *MemoryDatabase) ListCardAssignments(_ context.Context, cardID string) ([]models.CardAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CardAssignment, len(m.assignments[cardID]))
	copy(out, m.assignments[cardID])
	return out, nil
}

// --- Checklist items ---

func (m *MemoryDatabase) CreateChecklistItem(_ context.Context, item *models.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	m.checklistItems[item.ID] = *item
	return nil
}

func (m *MemoryDatabase) ListChecklistItems(_ context.Context, cardID string) ([]models.ChecklistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.ChecklistItem
	for _, item := range m.checklistItems {
		if item.CardID == cardID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (m *MemoryDatabase) UpdateChecklistItem(_ context.Context, item *models.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checklistItems[item.ID]; !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	m.checklistItems[item.ID] = *item
	return nil
}

func (m *MemoryDatabase) DeleteChecklistItem(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checklistItems[itemID]; !ok {
		return ErrNotFound
	}
	delete(m.checklistItems, itemID)
	return nil
}

// --- Hierarchy ---

func (m *MemoryDatabase) ResourceParent(_ context.Context, ref authz.ResourceRef) (authz.ResourceRef, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch ref.Type {
	case authz.ResourceProject:
		if p, ok := m.projects[ref.ID]; ok {
			return authz.ResourceRef{Type: authz.ResourceOrganization, ID: p.OrganizationID}, true, nil
		}
	case authz.ResourceBoard:
		if b, ok := m.boards[ref.ID]; ok {
			return authz.ResourceRef{Type: authz.ResourceProject, ID: b.ProjectID}, true, nil
		}
	case authz.ResourceColumn:
		if c, ok := m.columns[ref.ID]; ok {
			return authz.ResourceRef{Type: authz.ResourceBoard, ID: c.BoardID}, true, nil
		}
	case authz.ResourceCard:
		if c, ok := m.cards[ref.ID]; ok {
			return authz.ResourceRef{Type: authz.ResourceColumn, ID: c.ColumnID}, true, nil
		}
	}
	return authz.ResourceRef{}, false, nil
}

func (m *MemoryDatabase) HealthCheck(_ context.Context) error {
	return nil
}

func (m *MemoryDatabase) Close() error {
	return nil
}
