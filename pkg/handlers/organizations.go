package handlers

import (
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

const invitationTTL = 14 * 24 * time.Hour

// OrganizationHandler serves organization CRUD, membership management and
// invitations.
type OrganizationHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	authz  *authz.Service
}

func NewOrganizationHandler(cfg *config.Config, db database.DatabaseInterface, authzSvc *authz.Service) *OrganizationHandler {
	return &OrganizationHandler{config: cfg, db: db, authz: authzSvc}
}

type organizationRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	AllowedDomains []string `json:"allowed_domains"`
	ContactEmail   string   `json:"contact_email"`
	LogoURL        string   `json:"logo_url"`
}

// Create makes a new organization with the caller as its first owner.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req organizationRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteValidationErrorResponse(w, "Organization name is required", "")
		return
	}

	org := &models.Organization{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		AllowedDomains: req.AllowedDomains,
		ContactEmail:   req.ContactEmail,
		LogoURL:        req.LogoURL,
		CreatedBy:      caller.ID,
	}
	if err := h.db.CreateOrganization(r.Context(), org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create organization")
		return
	}

	membership := &models.OrganizationMembership{
		OrganizationID: org.ID,
		UserID:         caller.ID,
		Role:           models.RoleOwner,
	}
	if err := h.db.AddOrganizationMember(r.Context(), membership); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create organization")
		return
	}

	utils.WriteCreatedResponse(w, org)
}

// List returns the organizations the caller belongs to.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgs, err := h.db.ListUserOrganizations(r.Context(), caller.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list organizations")
		return
	}
	utils.WriteSuccessResponse(w, orgs)
}

// Get returns one organization the caller can view.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")

	org, err := h.db.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionView); !ok {
		return
	}
	utils.WriteSuccessResponse(w, org)
}

// Update modifies organization metadata; admin or above.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")

	org, err := h.db.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionUpdateOrganization); !ok {
		return
	}

	var req organizationRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		org.Name = name
	}
	org.Description = req.Description
	if req.AllowedDomains != nil {
		org.AllowedDomains = req.AllowedDomains
	}
	if req.ContactEmail != "" {
		org.ContactEmail = req.ContactEmail
	}
	if req.LogoURL != "" {
		org.LogoURL = req.LogoURL
	}

	if err := h.db.UpdateOrganization(r.Context(), org); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}
	utils.WriteSuccessResponse(w, org)
}

// Delete removes an organization and everything it contains; owner only.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionDeleteOrganization); !ok {
		return
	}

	if err := h.db.DeleteOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": orgID, "status": "deleted"})
}

// ListMembers returns the membership roster.
func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.db.ListOrganizationMembers(r.Context(), orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list members")
		return
	}
	utils.WriteSuccessResponse(w, members)
}

type inviteMemberRequest struct {
	Email string               `json:"email"`
	Role  models.OrgMemberRole `json:"role"`
}

// InviteMember creates a pending invitation; admin or above. Granting the
// owner role is reserved for owners.
func (h *OrganizationHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
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
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionInviteMember)
	if !ok {
		return
	}

	var req inviteMemberRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		utils.WriteValidationErrorResponse(w, "Email is required", "")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !req.Role.Valid() {
		utils.WriteValidationErrorResponse(w, "Invalid role", string(req.Role))
		return
	}
	if req.Role == models.RoleOwner && decision.Role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only owners can grant the owner role")
		return
	}

	// An existing account joins immediately; unknown emails get a tokened
	// invitation instead.
	if existing, err := h.db.GetUserByEmail(r.Context(), req.Email); err == nil {
		if _, already, err := h.db.MemberRole(r.Context(), existing.ID, orgID); err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to add member")
			return
		} else if already {
			utils.WriteConflictResponse(w, "User is already a member of this organization")
			return
		}
		membership := &models.OrganizationMembership{
			OrganizationID: orgID,
			UserID:         existing.ID,
			Role:           req.Role,
			InvitedBy:      caller.ID,
		}
		if err := h.db.AddOrganizationMember(r.Context(), membership); err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to add member")
			return
		}
		utils.WriteCreatedResponse(w, membership)
		return
	}

	token, err := utils.GenerateURLToken(24)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create invitation")
		return
	}

	inv := &models.OrganizationInvitation{
		OrganizationID: orgID,
		Email:          req.Email,
		Role:           req.Role,
		InviterID:      caller.ID,
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      time.Now().Add(invitationTTL),
	}
	if err := h.db.CreateInvitation(r.Context(), inv); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create invitation")
		return
	}
	utils.WriteCreatedResponse(w, inv)
}

// RemoveMember removes a member; admin or above. Removing an owner is
// reserved for owners, and the last owner can never be removed.
func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")
	targetID := chi.URLParam(r, "userID")

	if _, err := h.db.GetOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionRemoveMember)
	if !ok {
		return
	}

	targetRole, isMember, err := h.db.MemberRole(r.Context(), targetID, orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to look up member")
		return
	}
	if !isMember {
		utils.WriteNotFoundResponse(w, "Member not found")
		return
	}

	if targetRole == models.RoleOwner {
		if decision.Role != models.RoleOwner {
			utils.WriteForbiddenResponse(w, "Only owners can remove an owner")
			return
		}
		owners, err := h.db.CountOwners(r.Context(), orgID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to look up member")
			return
		}
		if owners <= 1 {
			utils.WriteErrorResponseWithCode(w, http.StatusConflict, "LAST_OWNER",
				"An organization must keep at least one owner", "")
			return
		}
	}

	if err := h.db.RemoveOrganizationMember(r.Context(), orgID, targetID); err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"user_id": targetID, "status": "removed"})
}

type changeRoleRequest struct {
	Role models.OrgMemberRole `json:"role"`
}

// ChangeRole updates a member's role; admin or above. Granting or taking
// away the owner role is reserved for owners, and the last owner cannot be
// demoted.
func (h *OrganizationHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")
	targetID := chi.URLParam(r, "userID")

	if _, err := h.db.GetOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "Organization not found")
		return
	}

	ref := authz.ResourceRef{Type: authz.ResourceOrganization, ID: orgID}
	decision, ok := authorizeOrFail(w, r, h.authz, caller.ID, ref, authz.ActionChangeRole)
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if !req.Role.Valid() {
		utils.WriteValidationErrorResponse(w, "Invalid role", string(req.Role))
		return
	}

	targetRole, isMember, err := h.db.MemberRole(r.Context(), targetID, orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to look up member")
		return
	}
	if !isMember {
		utils.WriteNotFoundResponse(w, "Member not found")
		return
	}
	if targetRole == req.Role {
		utils.WriteSuccessResponse(w, map[string]string{"user_id": targetID, "role": string(req.Role)})
		return
	}

	ownerInvolved := targetRole == models.RoleOwner || req.Role == models.RoleOwner
	if ownerInvolved && decision.Role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only owners can grant or revoke the owner role")
		return
	}
	if targetRole == models.RoleOwner {
		owners, err := h.db.CountOwners(r.Context(), orgID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to look up member")
			return
		}
		if owners <= 1 {
			utils.WriteErrorResponseWithCode(w, http.StatusConflict, "LAST_OWNER",
				"An organization must keep at least one owner", "")
			return
		}
	}

	if err := h.db.UpdateMemberRole(r.Context(), orgID, targetID, req.Role); err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"user_id": targetID, "role": string(req.Role)})
}

// MyInvitations lists the caller's pending invitations.
func (h *OrganizationHandler) MyInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	invs, err := h.db.ListInvitationsByEmail(r.Context(), caller.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list invitations")
		return
	}
	utils.WriteSuccessResponse(w, invs)
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

// AcceptInvitation turns a pending invitation into a membership. The
// invitation must match the caller's email and not be expired.
func (h *OrganizationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req acceptInvitationRequest
	if err := utils.ParseJSONBody(r, &req); err != nil || req.Token == "" {
		utils.WriteBadRequestResponse(w, "Invitation token is required")
		return
	}

	inv, err := h.db.GetInvitationByToken(r.Context(), req.Token)
	if err != nil {
		writeStoreError(w, err, "Invitation not found")
		return
	}
	if !strings.EqualFold(inv.Email, caller.Email) {
		utils.WriteForbiddenResponse(w, "This invitation was issued to a different email address")
		return
	}
	if inv.Status != models.InvitationPending {
		utils.WriteConflictResponse(w, "Invitation is no longer pending")
		return
	}
	if time.Now().After(inv.ExpiresAt) {
		inv.Status = models.InvitationExpired
		_ = h.db.UpdateInvitation(r.Context(), inv)
		utils.WriteErrorResponseWithCode(w, http.StatusGone, "INVITATION_EXPIRED", "Invitation has expired", "")
		return
	}

	if _, already, err := h.db.MemberRole(r.Context(), caller.ID, inv.OrganizationID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to accept invitation")
		return
	} else if already {
		utils.WriteConflictResponse(w, "You are already a member of this organization")
		return
	}

	membership := &models.OrganizationMembership{
		OrganizationID: inv.OrganizationID,
		UserID:         caller.ID,
		Role:           inv.Role,
		InvitedBy:      inv.InviterID,
	}
	if err := h.db.AddOrganizationMember(r.Context(), membership); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to accept invitation")
		return
	}

	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = &caller.ID
	if err := h.db.UpdateInvitation(r.Context(), inv); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to accept invitation")
		return
	}
	utils.WriteSuccessResponse(w, membership)
}
