// Package handlers provides HTTP response and request helpers shared by the
// domain handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/arbiter/pkg/validation"
)

// ErrInvalidBody is returned by Decode when the request body is not valid JSON.
var ErrInvalidBody = errors.New("invalid request body")

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
	} else {
		logger.Debug("handler error", "error", err, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// Decode reads a JSON body into T and validates it. Decoding failures wrap
// ErrInvalidBody; tag failures wrap validation.ErrInvalid.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if err := validation.Struct(v); err != nil {
		return v, err
	}
	return v, nil
}
