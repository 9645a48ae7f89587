package requests

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/arbiter/internal/cases"
	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for document request operations.
var (
	ErrNotFound         = errors.New("document request not found")
	ErrNotPending       = errors.New("document request is no longer pending")
	ErrDocumentMismatch = errors.New("document belongs to a different case")
)

// MapHTTPStatus maps request domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, cases.ErrNotFound),
		errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, ErrDocumentMismatch),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
