// Package httpx provides HTTP response utilities for the admin API envelope.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Envelope is the standard response shape of the admin API.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends an arbitrary JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: "success", Data: data})
}

// SuccessMessage sends a success envelope with a human-readable message.
func SuccessMessage(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{Status: "success", Data: data, Message: message})
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: "error", Message: message})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed request body", ErrValidation)
	}
	return nil
}

// RespondError maps a domain error to the envelope. Errors outside the known
// taxonomy become a generic 500 so internal detail never reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, UserSafeMessage(err))
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, UserSafeMessage(err))
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, UserSafeMessage(err))
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, UserSafeMessage(err))
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, UserSafeMessage(err))
	default:
		Error(w, http.StatusInternalServerError, "Internal server error.")
	}
}
