package config

import (
	"path/filepath"
	"strings"
)

// ResolveRuntimePath returns raw, or fallback when raw is blank, as an absolute
// path. Relative paths are taken from the working directory.
func ResolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return filepath.Clean(target)
	}
	return abs
}
