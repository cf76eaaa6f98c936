// Package snapshot renders a project folder as an ASCII tree or as a single
// text file holding the contents of its source files.
package snapshot

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath strips surrounding quotes, expands a leading ~ and cleans
// the result.
func NormalizePath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), `"`)
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}

// extOf returns the extension of name the way dot files expect it: leading
// dots belong to the name, so ".env" has no extension and ".env.example" has
// ".example".
func extOf(name string) string {
	return filepath.Ext(strings.TrimLeft(name, "."))
}

func toSet(values ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, vs := range values {
		for _, v := range vs {
			set[v] = true
		}
	}
	return set
}
