package templates

import (
	"embed"
	"fmt"
)

//go:embed defaults/*.tmpl
var defaults embed.FS

// Default returns the built-in body for a section.
func Default(key Key) (string, error) {
	if _, err := ParseKey(string(key)); err != nil {
		return "", err
	}
	data, err := defaults.ReadFile(fmt.Sprintf("defaults/%s.tmpl", key))
	if err != nil {
		return "", fmt.Errorf("read default %s: %w", key, err)
	}
	return string(data), nil
}
