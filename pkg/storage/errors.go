package storage

import (
	"errors"
	"net/http"
)

// Storage errors.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("blob key must not be empty")
	ErrInvalidKey = errors.New("blob key contains a path traversal segment")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
