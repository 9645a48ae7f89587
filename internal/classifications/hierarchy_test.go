package classifications_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/arbiter/internal/classifications"
)

func TestDefaultHierarchy(t *testing.T) {
	h, err := classifications.LoadHierarchy("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if n := len(h.Roots()); n != 5 {
		t.Errorf("roots = %d, want 5", n)
	}

	labels := h.Labels()
	if len(labels) != 20 {
		t.Fatalf("labels = %d, want 20", len(labels))
	}
	if labels[0] != "Procedural Documents" || labels[1] != "Notice of Arbitration" {
		t.Errorf("labels not parent first: %v", labels[:2])
	}

	root, ok := h.Root("Procedural Orders")
	if !ok || root != "procedural" {
		t.Errorf("Root(Procedural Orders) = %q, %v", root, ok)
	}
	root, ok = h.Root("Procedural Documents")
	if !ok || root != "procedural" {
		t.Errorf("Root(Procedural Documents) = %q, %v", root, ok)
	}
	if _, ok := h.Root("Unknown"); ok {
		t.Error("unknown label resolved to a root")
	}
}

func TestLabelsReturnsCopy(t *testing.T) {
	h, err := classifications.LoadHierarchy("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	labels := h.Labels()
	labels[0] = "mutated"
	if h.Labels()[0] == "mutated" {
		t.Error("Labels exposed internal slice")
	}
}

func TestNewHierarchyInvalid(t *testing.T) {
	tests := []struct {
		name  string
		roots []classifications.Category
	}{
		{"empty", nil},
		{"missing id", []classifications.Category{{Name: "a"}}},
		{"missing name", []classifications.Category{{ID: "a"}}},
		{
			"duplicate label",
			[]classifications.Category{
				{ID: "a", Name: "A", Children: []classifications.Category{{ID: "b", Name: "A"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := classifications.NewHierarchy(tt.roots)
			if !errors.Is(err, classifications.ErrInvalidHierarchy) {
				t.Errorf("error = %v, want ErrInvalidHierarchy", err)
			}
		})
	}
}

func TestParseHierarchyInvalidYAML(t *testing.T) {
	_, err := classifications.ParseHierarchy([]byte("- id: [unterminated"))
	if !errors.Is(err, classifications.ErrInvalidHierarchy) {
		t.Errorf("error = %v, want ErrInvalidHierarchy", err)
	}
}

func TestLoadHierarchyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	data := []byte(`
- id: general
  name: General
  children:
    - id: misc
      name: Miscellaneous
      keywords: [other]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, err := classifications.LoadHierarchy(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := h.Labels(); len(got) != 2 || got[1] != "Miscellaneous" {
		t.Errorf("labels = %v", got)
	}

	if _, err := classifications.LoadHierarchy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
