package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecospend/greentracker/internal/ai"
	"github.com/ecospend/greentracker/internal/domain"
	"github.com/ecospend/greentracker/internal/metrics"
	"github.com/ecospend/greentracker/internal/service"
)

// errorResponse is the single JSON error shape of the API.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// analysisOutcome maps an analyze failure onto a metrics label.
func analysisOutcome(err error) string {
	var rejected *ai.RejectedError
	switch {
	case errors.As(err, &rejected):
		return metrics.OutcomeRejected
	case errors.Is(err, ai.ErrExtractionFailed):
		return metrics.OutcomeExtractionFailed
	case errors.Is(err, ai.ErrCallFailed):
		return metrics.OutcomeCallFailed
	default:
		return metrics.OutcomeError
	}
}

// writeDomainError maps the service and AI error kinds onto HTTP
// statuses. Every kind is recoverable: the session stays usable and no
// durable state is corrupted.
func writeDomainError(w http.ResponseWriter, err error) {
	var rejected *ai.RejectedError

	switch {
	case errors.Is(err, domain.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "duplicate_user", "username already exists")
	case errors.Is(err, domain.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, "unknown_user", "invalid username or password")
	case errors.Is(err, domain.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "wrong_password", "invalid username or password")
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not_authenticated", "login required")
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusInternalServerError, "storage_unavailable", "could not persist changes, please retry")
	case errors.As(err, &rejected):
		writeError(w, http.StatusBadRequest, "external_rejected", rejected.Message)
	case errors.Is(err, ai.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, "extraction_failed",
			"could not read values from the analysis, please retry with a clearer image")
	case errors.Is(err, ai.ErrCallFailed):
		writeError(w, http.StatusBadGateway, "external_call_failed", "analysis service unavailable, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
