package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/database"
	"worksphere-backend/pkg/middleware"
	"worksphere-backend/pkg/models"
	"worksphere-backend/pkg/utils"
)

// requireUser pulls the authenticated user off the context, writing a 401
// when the auth middleware did not run or rejected the request.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok || user == nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return nil, false
	}
	return user, true
}

// authorizeOrFail runs the role check and writes the response on failure.
// A hierarchy error is an internal fault, never a 403.
func authorizeOrFail(w http.ResponseWriter, r *http.Request, svc *authz.Service, userID string, ref authz.ResourceRef, action authz.Action) (authz.Decision, bool) {
	decision, err := svc.Authorize(r.Context(), userID, ref, action)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Authorization check failed")
		return authz.Decision{}, false
	}
	if !decision.Allowed {
		utils.WriteDenyResponse(w, decision)
		return decision, false
	}
	return decision, true
}

// checkGateOrFail evaluates the protection gate after an allow and writes
// the response on failure.
func checkGateOrFail(w http.ResponseWriter, r *http.Request, svc *authz.Service, role models.OrgMemberRole, projectID string, action authz.Action, updateFields []string) bool {
	decision, err := svc.CheckProtection(r.Context(), role, projectID, action, updateFields)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Protection check failed")
		return false
	}
	if !decision.Allowed {
		utils.WriteDenyResponse(w, decision)
		return false
	}
	return true
}

// projectIDForRef walks the containment chain up from ref to the owning
// project. Refs at or above project level that are not projects are an error.
func projectIDForRef(ctx context.Context, db database.DatabaseInterface, ref authz.ResourceRef) (string, error) {
	current := ref
	for i := 0; i < 4; i++ {
		if current.Type == authz.ResourceProject {
			return current.ID, nil
		}
		parent, ok, err := db.ResourceParent(ctx, current)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("no project above %s", current)
		}
		current = parent
	}
	return "", fmt.Errorf("no project above %s", ref)
}

// writeStoreError maps storage failures to responses: a missing row is a
// 404, anything else a 500.
func writeStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, database.ErrNotFound) {
		utils.WriteNotFoundResponse(w, notFoundMessage)
		return
	}
	utils.WriteInternalServerErrorResponse(w, "Storage operation failed")
}
