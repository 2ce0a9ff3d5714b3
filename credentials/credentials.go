// Package credentials loads platform credentials from standard locations.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ErrInsecurePermissions is returned when the credentials file has overly permissive permissions.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Bundle holds credentials for the managed platform, loaded from
// credentials.toml. A bundle with a non-empty access token or profile
// identifier marks the session as platform-backed even when the endpoint
// points at a self-hosted gateway.
type Bundle struct {
	// AccessToken authenticates against the managed platform.
	AccessToken string `toml:"access_token"`

	// Profile identifies a managed-platform profile routed through a gateway.
	Profile string `toml:"profile"`
}

// fileSchema is the on-disk layout of credentials.toml.
type fileSchema struct {
	Platform *Bundle `toml:"platform"`
}

// Empty reports whether the bundle carries no usable credential.
func (b *Bundle) Empty() bool {
	return b == nil || (b.AccessToken == "" && b.Profile == "")
}

// StandardPaths returns the standard credential file locations in order of priority.
func StandardPaths() []string {
	paths := []string{}

	// 1. Current directory
	paths = append(paths, "credentials.toml")

	// 2. ~/.config/mcpkeep/credentials.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mcpkeep", "credentials.toml"))
	}

	// 3. ~/.mcpkeep/credentials.toml (fallback)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mcpkeep", "credentials.toml"))
	}

	return paths
}

// Load loads credentials from the first available standard location.
func Load() (*Bundle, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			b, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return b, path, nil
		}
	}
	return nil, "", nil // No credentials file found (not an error)
}

// LoadFile loads credentials from a specific file.
// Returns ErrInsecurePermissions if file is readable by group or others.
func LoadFile(path string) (*Bundle, error) {
	// Check file permissions (Unix only)
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := info.Mode().Perm()
		// Credentials must be 0400 (owner read-only)
		if mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	var raw fileSchema
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}

	if raw.Platform == nil {
		return &Bundle{}, nil
	}
	return raw.Platform, nil
}

// FromEnv builds a bundle from environment variables. Returns nil when
// neither variable is set so callers can fall through to file loading.
func FromEnv() *Bundle {
	token := os.Getenv("AGENTGRID_ACCESS_TOKEN")
	profile := os.Getenv("AGENTGRID_PROFILE")
	if token == "" && profile == "" {
		return nil
	}
	return &Bundle{AccessToken: token, Profile: profile}
}
