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

// BoardHandler serves board CRUD under projects.
type BoardHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	authz  *authz.Service
}

func NewBoardHandler(cfg *config.Config, db database.DatabaseInterface, authzSvc *authz.Service) *BoardHandler {
	return &BoardHandler{config: cfg, db: db, authz: authzSvc}
}

type boardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes a board under a project; member or above.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "projectID")

	if _, err := h.db.GetProject(r.Context(), projectID); err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceProject, ID: projectID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionCreateBoard); !ok {
		return
	}

	var req boardRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteValidationErrorResponse(w, "Board name is required", "")
		return
	}

	board := &models.Board{
		ProjectID:   projectID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   caller.ID,
	}
	if err := h.db.CreateBoard(r.Context(), board); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create board")
		return
	}
	utils.WriteCreatedResponse(w, board)
}

// List returns the boards in a project.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "projectID")

	if _, err := h.db.GetProject(r.Context(), projectID); err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceProject, ID: projectID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}

	boards, err := h.db.ListBoardsByProject(r.Context(), projectID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list boards")
		return
	}
	utils.WriteSuccessResponse(w, boards)
}

// Get returns one board.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := chi.URLParam(r, "boardID")

	board, err := h.db.GetBoard(r.Context(), boardID)
	if err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceBoard, ID: boardID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}
	utils.WriteSuccessResponse(w, board)
}

// Update modifies board metadata; member or above.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := chi.URLParam(r, "boardID")

	board, err := h.db.GetBoard(r.Context(), boardID)
	if err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceBoard, ID: boardID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateBoard); !ok {
		return
	}

	var req boardRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		board.Name = name
	}
	board.Description = req.Description

	if err := h.db.UpdateBoard(r.Context(), board); err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}
	utils.WriteSuccessResponse(w, board)
}

// Delete removes a board; admin or above, then gate-checked.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := chi.URLParam(r, "boardID")

	board, err := h.db.GetBoard(r.Context(), boardID)
	if err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceBoard, ID: boardID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionDeleteBoard)
	if !ok {
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, board.ProjectID, authz.ActionDeleteBoard, nil) {
		return
	}

	if err := h.db.DeleteBoard(r.Context(), boardID); err != nil {
		writeStoreError(w, err, "Board not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": boardID, "status": "deleted"})
}
