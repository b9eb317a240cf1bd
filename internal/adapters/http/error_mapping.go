package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPetitionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidReclassificationTarget):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrAlreadyManual):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrCatalogUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeDomainError hides internal failure details behind a generic message; the access
// log carries the underlying error.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		recordFailure(r, err)
		message = "internal error"
	}
	writeError(w, r, status, message)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, RequestID: requestIDFromContext(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
