package templates

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for template operations.
var (
	ErrNotFound        = errors.New("template not found")
	ErrDuplicate       = errors.New("template name already exists")
	ErrInvalidSection  = errors.New("unknown award section")
	ErrInvalidTemplate = errors.New("template does not parse")
	ErrRender          = errors.New("template rendering failed")
)

// MapHTTPStatus maps template domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSection),
		errors.Is(err, ErrInvalidTemplate),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
