package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
)

// Accepted layouts for due-date fields, tried in order.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// identityFromRequest extracts the authenticated identity placed in the
// context by the authentication middleware.
func identityFromRequest(r *http.Request) (shared.Identity, bool) {
	return shared.IdentityFrom(r.Context())
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handleIdentityAndPathUUID extracts both the authenticated identity and a
// UUID path parameter, writing the error response itself when either step
// fails.
func handleIdentityAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (shared.Identity, uuid.UUID, bool) {
	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return shared.Identity{}, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return shared.Identity{}, uuid.Nil, false
	}

	return identity, pathID, true
}

// parseDueDate parses a due-date string as RFC 3339 or a bare calendar day.
func parseDueDate(value string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, domain.NewValidationError("dueDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date", nil)
}

// HandleAPIError maps an internal error to a status code and sanitized
// message and writes the error envelope. An empty overrideMessage keeps the
// mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)
	message := overrideMessage
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
