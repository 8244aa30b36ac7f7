package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/config"
	"worksphere-backend/pkg/database"
	"worksphere-backend/pkg/models"
	"worksphere-backend/pkg/utils"
)

// ColumnHandler serves column CRUD under boards.
type ColumnHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	authz  *authz.Service
}

func NewColumnHandler(cfg *config.Config, db database.DatabaseInterface, authzSvc *authz.Service) *ColumnHandler {
	return &ColumnHandler{config: cfg, db: db, authz: authzSvc}
}

type columnRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position"`
}

// Create makes a column on a board; member or above.
func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := chi.URLParam(r, "boardID")

	if _, err := h.db.GetBoard(r.Context(), boardID); err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceBoard, ID: boardID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionCreateColumn); !ok {
		return
	}

	var req columnRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteValidationErrorResponse(w, "Column name is required", "")
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := h.db.ListColumnsByBoard(r.Context(), boardID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to create column")
			return
		}
		position = len(existing)
	}

	column := &models.Column{
		BoardID:  boardID,
		Name:     strings.TrimSpace(req.Name),
		Position: position,
	}
	if err := h.db.CreateColumn(r.Context(), column); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create column")
		return
	}
	utils.WriteCreatedResponse(w, column)
}

// List returns a board's columns in position order.
func (h *ColumnHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := chi.URLParam(r, "boardID")

	if _, err := h.db.GetBoard(r.Context(), boardID); err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceBoard, ID: boardID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}

	columns, err := h.db.ListColumnsByBoard(r.Context(), boardID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list columns")
		return
	}
	utils.WriteSuccessResponse(w, columns)
}

// Update renames or repositions a column; member or above.
func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	columnID := chi.URLParam(r, "columnID")

	column, err := h.db.GetColumn(r.Context(), columnID)
	if err != nil {
		writeStoreError(w, err, "Column not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceColumn, ID: columnID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateColumn); !ok {
		return
	}

	var req columnRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		column.Name = name
	}
	if req.Position != nil {
		column.Position = *req.Position
	}

	if err := h.db.UpdateColumn(r.Context(), column); err != nil {
		writeStoreError(w, err, "Column not found")
		return
	}
	utils.WriteSuccessResponse(w, column)
}

// Delete removes a column and its cards; admin or above, then gate-checked.
func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionDeleteColumn)
	if !ok {
		return
	}

	projectID, err := projectIDForRef(r.Context(), h.db, ref)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionDeleteColumn, nil) {
		return
	}

	if err := h.db.DeleteColumn(r.Context(), columnID); err != nil {
		writeStoreError(w, err, "Column not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": columnID, "status": "deleted"})
}
