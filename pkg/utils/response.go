package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"worksphere-backend/pkg/authz"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code plus human-readable text.
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details string   `json:"details,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// WriteJSONResponse writes data inside the response envelope.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusOK, data)
}

func WriteCreatedResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusCreated, data)
}

// WriteErrorResponseWithCode writes an error envelope with a specific code.
func WriteErrorResponseWithCode(w http.ResponseWriter, statusCode int, code, message, details string) {
	writeError(w, statusCode, &APIError{Code: code, Message: message, Details: details})
}

func writeError(w http.ResponseWriter, statusCode int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{Success: false, Error: apiErr}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func WriteBadRequestResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusBadRequest, "BAD_REQUEST", message, "")
}

func WriteUnauthorizedResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusUnauthorized, "UNAUTHORIZED", message, "")
}

func WriteForbiddenResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusForbidden, "FORBIDDEN", message, "")
}

func WriteNotFoundResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusNotFound, "NOT_FOUND", message, "")
}

func WriteConflictResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusConflict, "CONFLICT", message, "")
}

func WriteInternalServerErrorResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, "")
}

func WriteValidationErrorResponse(w http.ResponseWriter, message, details string) {
	WriteErrorResponseWithCode(w, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// denyCodes maps denial reasons to the error codes clients switch on.
var denyCodes = map[authz.DenyReason]string{
	authz.ReasonNotAMember:       "NOT_A_MEMBER",
	authz.ReasonInsufficientRole: "INSUFFICIENT_ROLE",
	authz.ReasonDataProtected:    "DATA_PROTECTED",
	authz.ReasonSignOffPending:   "SIGN_OFF_PENDING",
	authz.ReasonRestrictedFields: "RESTRICTED_FIELDS",
	authz.ReasonTargetNotMember:  "TARGET_NOT_A_MEMBER",
}

// WriteDenyResponse renders an authorization denial. Every denial is a 403
// with the reason as code; a restricted-fields denial also names the
// offending fields so clients can retry with a narrower payload.
func WriteDenyResponse(w http.ResponseWriter, d authz.Decision) {
	code, ok := denyCodes[d.Reason]
	if !ok {
		code = "FORBIDDEN"
	}
	message := d.Detail
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	apiErr := &APIError{Code: code, Message: message}
	if len(d.RestrictedFields) > 0 {
		apiErr.Fields = d.RestrictedFields
		apiErr.Details = "only " + strings.Join(d.AllowedFields, ", ") + " may change while sign-off review is pending"
	}
	writeError(w, http.StatusForbidden, apiErr)
}

// ParseJSONBody decodes the request body into v.
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
