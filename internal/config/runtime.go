package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath is used before the environment is loaded, when only
// TUSK_RUNTIME_PATH may be set.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("TUSK_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".tuskchat"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
