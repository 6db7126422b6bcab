package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables overriding the default on-disk locations.
const (
	ConfigDirEnv = "MAILFOLD_CONFIG_DIR"
	OAuthKeysEnv = "MAILFOLD_OAUTH_KEYS"
)

// ConfigDir returns the directory holding the account registry, the
// per-account credential files and (by default) the OAuth keys file.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".mailfold")
}

// KeysPath returns the location of the OAuth application keys file.
func KeysPath() string {
	if path := os.Getenv(OAuthKeysEnv); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), "gcp-oauth.keys.json")
}

// RegistryPath returns the location of the account registry document.
func RegistryPath() string {
	return filepath.Join(ConfigDir(), "accounts.json")
}

// CredentialsDir returns the directory holding per-account credential files.
func CredentialsDir() string {
	return filepath.Join(ConfigDir(), "accounts")
}

// LoadKeys reads the OAuth application keys file and returns the base OAuth2
// configuration shared by every account's client.
//
// The file must be a Google client-secret document with either a "web" or an
// "installed" top-level key. A missing or malformed file is the one
// startup-fatal condition: without application keys no account can ever be
// authenticated, so the caller should refuse to start.
func LoadKeys(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth keys file %s: %w", path, err)
	}

	conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth keys file %s (expected a client secret document with a \"web\" or \"installed\" key): %w", path, err)
	}

	return conf, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	// Windows fallback
	return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
}
