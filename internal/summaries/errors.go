package summaries

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for summary operations.
var (
	ErrNotFound        = errors.New("summary not found")
	ErrDuplicate       = errors.New("document already has a summary")
	ErrInvalidDocument = errors.New("document has no content field")
	ErrEmptyContent    = errors.New("Document content cannot be empty")
	ErrProcessing      = errors.New("summarization failed")
	ErrBatchExhausted  = errors.New("every document in the batch failed")
)

// StageError is a model failure during one stage of summarization. It
// matches ErrProcessing.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("summarization failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool { return target == ErrProcessing }

// MapHTTPStatus maps summary domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrProcessing), errors.Is(err, ErrBatchExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
