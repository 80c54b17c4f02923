// Package handler provides the HTTP surface for Berea.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/berea-app/berea/internal/service"
)

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps a service error to a status code and JSON body.
// Credential failures share one body: whether the username exists or the
// password was wrong is not disclosed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
	case errors.Is(err, service.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "username already exists"})
	case errors.Is(err, service.ErrUsernameReserved):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "username is reserved"})
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrVerseNotFound),
		errors.Is(err, service.ErrDevotionalNotFound),
		errors.Is(err, service.ErrPrayerNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, service.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "service temporarily unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
// On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return false
	}
	return true
}
