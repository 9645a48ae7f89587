package classifications

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed hierarchy.yaml
var defaultHierarchy []byte

// ErrInvalidHierarchy is returned when a category hierarchy cannot be used.
var ErrInvalidHierarchy = errors.New("invalid category hierarchy")

// Category is a node of the category hierarchy. Name is the label scored by
// the model.
type Category struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords    []string   `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Children    []Category `yaml:"children,omitempty" json:"children,omitempty"`
}

// Hierarchy is the immutable category tree shared by every categorization.
type Hierarchy struct {
	roots  []Category
	labels []string
	rootOf map[string]string
}

// NewHierarchy indexes roots. Category ids must be present and labels must
// be unique across the whole tree.
func NewHierarchy(roots []Category) (*Hierarchy, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidHierarchy)
	}

	h := &Hierarchy{
		roots:  roots,
		rootOf: make(map[string]string),
	}

	var walk func(root string, cats []Category) error
	walk = func(root string, cats []Category) error {
		for _, c := range cats {
			if c.ID == "" || c.Name == "" {
				return fmt.Errorf("%w: category requires id and name", ErrInvalidHierarchy)
			}
			if _, dup := h.rootOf[c.Name]; dup {
				return fmt.Errorf("%w: duplicate label %q", ErrInvalidHierarchy, c.Name)
			}

			r := root
			if r == "" {
				r = c.ID
			}
			h.rootOf[c.Name] = r
			h.labels = append(h.labels, c.Name)

			if err := walk(r, c.Children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk("", roots); err != nil {
		return nil, err
	}
	return h, nil
}

// ParseHierarchy decodes a YAML list of root categories.
func ParseHierarchy(data []byte) (*Hierarchy, error) {
	var roots []Category
	if err := yaml.Unmarshal(data, &roots); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHierarchy, err)
	}
	return NewHierarchy(roots)
}

// LoadHierarchy reads the hierarchy at path, or the built-in arbitration
// hierarchy when path is empty.
func LoadHierarchy(path string) (*Hierarchy, error) {
	if path == "" {
		return ParseHierarchy(defaultHierarchy)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy: %w", err)
	}
	return ParseHierarchy(data)
}

// Roots returns the top-level categories.
func (h *Hierarchy) Roots() []Category {
	return h.roots
}

// Labels returns every category name, depth-first with parents before
// their children.
func (h *Hierarchy) Labels() []string {
	return slices.Clone(h.labels)
}

// Root returns the id of the top-level category that label belongs to.
func (h *Hierarchy) Root(label string) (string, bool) {
	r, ok := h.rootOf[label]
	return r, ok
}
