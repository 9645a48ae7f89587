package awards

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/arbiter/internal/templates"
	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Domain errors for award operations.
var (
	ErrNotFound          = errors.New("award not found")
	ErrCaseNotFound      = errors.New("case not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrDuplicate         = errors.New("award version already exists")
	ErrInvalidTransition = errors.New("invalid award status transition")
	ErrProcessing        = errors.New("award processing failed")
)

// SectionError reports a rendering failure for one section of a draft.
type SectionError struct {
	Section templates.Key
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("render section %s: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// Is reports SectionError as ErrProcessing.
func (e *SectionError) Is(target error) bool {
	return target == ErrProcessing
}

// MapHTTPStatus maps award domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCaseNotFound),
		errors.Is(err, ErrReviewNotFound),
		errors.Is(err, ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrProcessing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
