package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/storage"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrCaseNotFound    = errors.New("case not found")
	ErrDuplicate       = errors.New("document already submitted to this case")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrBatchTooLarge   = errors.New("too many files in batch")
	ErrNoEmbedding     = errors.New("document has no embedding")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCaseNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNoEmbedding):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
