package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/config"
	"worksphere-backend/pkg/database"
	"worksphere-backend/pkg/models"
	"worksphere-backend/pkg/utils"
)

// CardHandler serves card CRUD, card moves and checklist items. Mutations run
// the full pipeline: load entry resource, role check, protection gate, and
// assignment validation when assignees change.
type CardHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	authz  *authz.Service
}

func NewCardHandler(cfg *config.Config, db database.DatabaseInterface, authzSvc *authz.Service) *CardHandler {
	return &CardHandler{config: cfg, db: db, authz: authzSvc}
}

type cardCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Position    *int       `json:"position"`
	Labels      []string   `json:"labels"`
	AssignedTo  []string   `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// Create makes a card in a column; member or above.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	columnID := chi.URLParam(r, "columnID")

	if _, err := h.db.GetColumn(r.Context(), columnID); err != nil {
		writeStoreError(w, err, "Column not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceColumn, ID: columnID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionCreateCard)
	if !ok {
		return
	}

	var req cardCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteValidationErrorResponse(w, "Card title is required", "")
		return
	}
	if req.Status == "" {
		req.Status = "todo"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := h.db.ListCardsByColumn(r.Context(), columnID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to create card")
			return
		}
		position = len(existing)
	}

	if len(req.AssignedTo) > 0 {
		if !h.validateAssignees(w, r, caller.ID, decision.OrganizationID, req.AssignedTo) {
			return
		}
	}

	card := &models.Card{
		ColumnID:    columnID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Position:    position,
		Labels:      req.Labels,
		CreatedBy:   caller.ID,
	}
	if req.DueDate != nil {
		card.DueDate = req.DueDate
	}
	if err := h.db.CreateCard(r.Context(), card); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create card")
		return
	}
	if len(req.AssignedTo) > 0 {
		if err := h.db.ReplaceCardAssignments(r.Context(), card.ID, caller.ID, req.AssignedTo); err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to assign card")
			return
		}
	}

	h.writeCard(w, r, card, http.StatusCreated)
}

// List returns a column's cards in position order.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	columnID := chi.URLParam(r, "columnID")

	if _, err := h.db.GetColumn(r.Context(), columnID); err != nil {
		writeStoreError(w, err, "Column not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceColumn, ID: columnID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}

	cards, err := h.db.ListCardsByColumn(r.Context(), columnID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list cards")
		return
	}
	utils.WriteSuccessResponse(w, cards)
}

// Get returns one card with assignments and checklist embedded.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	card, err := h.db.GetCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}

	h.writeCard(w, r, card, http.StatusOK)
}

// Update applies a partial card update. During a pending sign-off review the
// gate restricts which fields non-owners may touch.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	card, err := h.db.GetCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateCard)
	if !ok {
		return
	}

	var req models.CardUpdate
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	projectID, err := projectIDForRef(r.Context(), h.db, ref)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionUpdateCard, req.Fields()) {
		return
	}

	if req.AssignedTo != nil {
		if !h.validateAssignees(w, r, caller.ID, decision.OrganizationID, *req.AssignedTo) {
			return
		}
	}

	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.Status != nil {
		card.Status = *req.Status
	}
	if req.Priority != nil {
		card.Priority = *req.Priority
	}
	if req.Position != nil {
		card.Position = *req.Position
	}
	if req.DueDate != nil {
		card.DueDate = req.DueDate
	}
	if req.Labels != nil {
		card.Labels = *req.Labels
	}

	if err := h.db.UpdateCard(r.Context(), card); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}
	if req.AssignedTo != nil {
		if err := h.db.ReplaceCardAssignments(r.Context(), card.ID, caller.ID, *req.AssignedTo); err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to assign card")
			return
		}
	}

	h.writeCard(w, r, card, http.StatusOK)
}

type moveCardRequest struct {
	ColumnID string `json:"column_id"`
	Position int    `json:"position"`
}

// Move relocates a card to another column on the same board.
func (h *CardHandler) Move(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	card, err := h.db.GetCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionMoveCard)
	if !ok {
		return
	}

	var req moveCardRequest
	if err := utils.ParseJSONBody(r, &req); err != nil || req.ColumnID == "" {
		utils.WriteBadRequestResponse(w, "Target column is required")
		return
	}

	source, err := h.db.GetColumn(r.Context(), card.ColumnID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to move card")
		return
	}
	target, err := h.db.GetColumn(r.Context(), req.ColumnID)
	if err != nil {
		writeStoreError(w, err, "Target column not found")
		return
	}
	if target.BoardID != source.BoardID {
		utils.WriteValidationErrorResponse(w, "Cards can only move between columns on the same board", "")
		return
	}

	projectID, err := projectIDForRef(r.Context(), h.db, ref)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionMoveCard, nil) {
		return
	}

	card.ColumnID = target.ID
	card.Position = req.Position
	if err := h.db.UpdateCard(r.Context(), card); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}
	h.writeCard(w, r, card, http.StatusOK)
}

// Delete removes a card; member or above, then gate-checked immediately
// before the destructive call.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	if _, err := h.db.GetCard(r.Context(), cardID); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionDeleteCard)
	if !ok {
		return
	}

	projectID, err := projectIDForRef(r.Context(), h.db, ref)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionDeleteCard, nil) {
		return
	}

	if err := h.db.DeleteCard(r.Context(), cardID); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": cardID, "status": "deleted"})
}

type checklistItemRequest struct {
	Text      string `json:"text"`
	Completed *bool  `json:"completed"`
	Position  *int   `json:"position"`
}

// AddChecklistItem appends a checklist entry to a card; member or above.
// Checklist changes count as restricted card edits during sign-off review.
func (h *CardHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	if _, err := h.db.GetCard(r.Context(), cardID); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateCard)
	if !ok {
		return
	}
	if !h.checkChecklistGate(w, r, decision, ref) {
		return
	}

	var req checklistItemRequest
	if err := utils.ParseJSONBody(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		utils.WriteValidationErrorResponse(w, "Checklist text is required", "")
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := h.db.ListChecklistItems(r.Context(), cardID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to add checklist item")
			return
		}
		position = len(existing)
	}

	item := &models.ChecklistItem{
		CardID:    cardID,
		Text:      strings.TrimSpace(req.Text),
		Position:  position,
		CreatedBy: caller.ID,
	}
	if err := h.db.CreateChecklistItem(r.Context(), item); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to add checklist item")
		return
	}
	utils.WriteCreatedResponse(w, item)
}

// UpdateChecklistItem edits or completes a checklist entry; member or above.
func (h *CardHandler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")
	itemID := chi.URLParam(r, "itemID")

	if _, err := h.db.GetCard(r.Context(), cardID); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateCard)
	if !ok {
		return
	}
	if !h.checkChecklistGate(w, r, decision, ref) {
		return
	}

	item, found, err := h.findChecklistItem(r.Context(), cardID, itemID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load checklist item")
		return
	}
	if !found {
		utils.WriteNotFoundResponse(w, "Checklist item not found")
		return
	}

	var req checklistItemRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if text := strings.TrimSpace(req.Text); text != "" {
		item.Text = text
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}
	if req.Position != nil {
		item.Position = *req.Position
	}

	if err := h.db.UpdateChecklistItem(r.Context(), item); err != nil {
		writeStoreError(w, err, "Checklist item not found")
		return
	}
	utils.WriteSuccessResponse(w, item)
}

// DeleteChecklistItem removes a checklist entry; member or above.
func (h *CardHandler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")
	itemID := chi.URLParam(r, "itemID")

	if _, err := h.db.GetCard(r.Context(), cardID); err != nil {
		writeStoreError(w, err, "Card not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceCard, ID: cardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateCard)
	if !ok {
		return
	}
	if !h.checkChecklistGate(w, r, decision, ref) {
		return
	}

	if _, found, err := h.findChecklistItem(r.Context(), cardID, itemID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load checklist item")
		return
	} else if !found {
		utils.WriteNotFoundResponse(w, "Checklist item not found")
		return
	}

	if err := h.db.DeleteChecklistItem(r.Context(), itemID); err != nil {
		writeStoreError(w, err, "Checklist item not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": itemID, "status": "deleted"})
}

// checkChecklistGate runs the protection gate for a checklist mutation,
// which is treated as a card edit outside the review allow-list.
func (h *CardHandler) checkChecklistGate(w http.ResponseWriter, r *http.Request, decision authz.Decision, ref authz.ResourceRef) bool {
	projectID, err := projectIDForRef(r.Context(), h.db, ref)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return false
	}
	return checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionUpdateCard, []string{"checklist_items"})
}

// findChecklistItem looks an item up within one card's checklist, so an item
// id from another card is a miss rather than a cross-card edit.
func (h *CardHandler) findChecklistItem(ctx context.Context, cardID, itemID string) (*models.ChecklistItem, bool, error) {
	items, err := h.db.ListChecklistItems(ctx, cardID)
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], true, nil
		}
	}
	return nil, false, nil
}

// validateAssignees runs the all-or-nothing assignment check and writes the
// response on failure.
func (h *CardHandler) validateAssignees(w http.ResponseWriter, r *http.Request, callerID, orgID string, targets []string) bool {
	result, err := h.authz.ValidateAssignment(r.Context(), callerID, orgID, targets)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Assignment validation failed")
		return false
	}
	if !result.Valid {
		detail := result.Detail
		if result.InvalidUserID != "" {
			detail = "user " + result.InvalidUserID + " is not a member of this organization"
		}
		utils.WriteDenyResponse(w, authz.Decision{
			Allowed: false,
			Reason:  result.Reason,
			Detail:  detail,
		})
		return false
	}
	return true
}

// writeCard responds with the card plus its embedded assignments and
// checklist items.
func (h *CardHandler) writeCard(w http.ResponseWriter, r *http.Request, card *models.Card, status int) {
	assignments, err := h.db.ListCardAssignments(r.Context(), card.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load card")
		return
	}
	items, err := h.db.ListChecklistItems(r.Context(), card.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load card")
		return
	}
	card.Assignments = assignments
	card.ChecklistItems = items
	utils.WriteJSONResponse(w, status, card)
}
