package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"wedding-ecard-platform/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinel errors onto the HTTP taxonomy. Anything
// unmapped is an internal error and keeps its detail out of the response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: "unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not the owner of this e-card", Code: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"})
	case errors.Is(err, domain.ErrAlreadyUnlocked):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "e-card is already unlocked", Code: "already_unlocked"})
	case errors.Is(err, domain.ErrInvalidSignature):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payment verification", Code: "invalid_signature"})
	case errors.Is(err, domain.ErrDeadlinePassed):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rsvp deadline has passed", Code: "deadline_passed"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists", Code: "already_exists"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Code: "invalid_argument"})
	case errors.Is(err, domain.ErrMockUnavailable):
		// The route is not registered with a live gateway; answering 404
		// keeps the dev path invisible in production.
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}
