package templates

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Resolver returns the body currently in effect for a section.
type Resolver interface {
	Resolve(ctx context.Context, key Key) (string, error)
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("2 January 2006") },
}

// Parse compiles body with the section template functions. Failures are
// ErrInvalidTemplate.
func Parse(key Key, body string) (*template.Template, error) {
	t, err := template.New(string(key)).Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return t, nil
}

// Renderer executes section bodies. Bodies come from the resolver, or the
// built-in defaults when the resolver is nil.
type Renderer struct {
	resolver Resolver
}

// NewRenderer creates a Renderer over resolver.
func NewRenderer(resolver Resolver) *Renderer {
	return &Renderer{resolver: resolver}
}

// Render executes the body in effect for key against data. The result is
// trimmed of surrounding whitespace.
func (r *Renderer) Render(ctx context.Context, key Key, data any) (string, error) {
	body, err := r.body(ctx, key)
	if err != nil {
		return "", err
	}

	t, err := Parse(key, body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, key, err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, key, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (r *Renderer) body(ctx context.Context, key Key) (string, error) {
	if r.resolver == nil {
		return Default(key)
	}
	return r.resolver.Resolve(ctx, key)
}
