package cases

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for case operations.
var (
	ErrNotFound  = errors.New("case not found")
	ErrDuplicate = errors.New("case number already exists")
)

// MapHTTPStatus maps case domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
