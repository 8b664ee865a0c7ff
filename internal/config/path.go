// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the default sqlite location under the user's
// config directory.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hucha.db"
	}
	return filepath.Join(home, ".config", "hucha", "hucha.db")
}

// DefaultTokenPath returns the default calendar OAuth token cache location.
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "calendar-token.json"
	}
	return filepath.Join(home, ".config", "hucha", "calendar-token.json")
}
