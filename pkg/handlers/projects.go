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

// ProjectHandler serves project CRUD. The four protection flags appear in
// responses but are written only by the external sign-off workflow.
type ProjectHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	authz  *authz.Service
}

func NewProjectHandler(cfg *config.Config, db database.DatabaseInterface, authzSvc *authz.Service) *ProjectHandler {
	return &ProjectHandler{config: cfg, db: db, authz: authzSvc}
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// Create makes a project under an organization; admin or above.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")

	if _, err := h.db.GetOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionCreateProject); !ok {
		return
	}

	var req projectRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteValidationErrorResponse(w, "Project name is required", "")
		return
	}
	if req.Status == "" {
		req.Status = "active"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	project := &models.Project{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		CreatedBy:      caller.ID,
	}
	if err := h.db.CreateProject(r.Context(), project); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create project")
		return
	}
	utils.WriteCreatedResponse(w, project)
}

// List returns the projects in an organization.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")

	if _, err := h.db.GetOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}

	projects, err := h.db.ListProjectsByOrganization(r.Context(), orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list projects")
		return
	}
	utils.WriteSuccessResponse(w, projects)
}

// Get returns one project.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "projectID")

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceProject, ID: projectID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}
	utils.WriteSuccessResponse(w, project)
}

// Update modifies project metadata; admin or above. Protection flags are
// not writable through this endpoint.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "projectID")

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceProject, ID: projectID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateProject); !ok {
		return
	}

	var req projectRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		project.Name = name
	}
	project.Description = req.Description
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Priority != "" {
		project.Priority = req.Priority
	}

	if err := h.db.UpdateProject(r.Context(), project); err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}
	utils.WriteSuccessResponse(w, project)
}

// Delete removes a project; admin or above, then gate-checked. The gate is
// evaluated immediately before the destructive call.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionDeleteProject)
	if !ok {
		return
	}
	if !checkGateOrFail(w, r, h.authz, decision.Role, projectID, authz.ActionDeleteProject, nil) {
		return
	}

	if err := h.db.DeleteProject(r.Context(), projectID); err != nil {
		writeStoreError(w, err, "Project not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": projectID, "status": "deleted"})
}
