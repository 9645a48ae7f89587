// Package templates manages the text/template bodies that render award
// sections: built-in defaults per section, named overrides stored in the
// database, and the renderer that picks the active one.
package templates

import (
	"time"

	"github.com/google/uuid"
)

// Template is a named override of the default body for an award section.
// At most one template per section is active.
type Template struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Section     Key       `json:"section"`
	Body        string    `json:"body"`
	Description *string   `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to create a section template.
type CreateCommand struct {
	Name        string  `json:"name" validate:"required"`
	Section     Key     `json:"section" validate:"required"`
	Body        string  `json:"body" validate:"required"`
	Description *string `json:"description"`
}

// UpdateCommand carries the data needed to update a section template.
type UpdateCommand struct {
	Name        string  `json:"name" validate:"required"`
	Section     Key     `json:"section" validate:"required"`
	Body        string  `json:"body" validate:"required"`
	Description *string `json:"description"`
}

// SectionContent is the response type for section-scoped body endpoints.
type SectionContent struct {
	Section Key    `json:"section"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}
