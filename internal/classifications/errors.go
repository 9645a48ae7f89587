package classifications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for classification operations.
var (
	ErrNotFound       = errors.New("classification not found")
	ErrDuplicate      = errors.New("classification already exists")
	ErrProcessing     = errors.New("classification processing failed")
	ErrBatchExhausted = errors.New("every document in the batch failed")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrBatchExhausted), errors.Is(err, ErrProcessing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
