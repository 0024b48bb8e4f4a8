// Package config resolves Gerrit credentials from the environment or
// from the on-disk config file at ~/.ger/config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ger/internal/ident"
)

// ErrNotFound means neither the environment nor the config file
// yielded usable credentials.
var ErrNotFound = errors.New("configuration not found; run 'ger setup' or set GERRIT_HOST, GERRIT_USERNAME and GERRIT_PASSWORD")

// InvalidError means a source was present but malformed.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Config holds credentials and review preferences for one run. The
// file is written only by setup; everything else just reads.
type Config struct {
	Host         string `json:"host"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	AIAutoDetect *bool  `json:"aiAutoDetect,omitempty"`
	AITool       string `json:"aiTool,omitempty"`
}

// AutoDetect reports whether AI tool auto-detection is enabled.
// Defaults to true when the field is absent.
func (c *Config) AutoDetect() bool {
	return c.AIAutoDetect == nil || *c.AIAutoDetect
}

// Dir returns the ~/.ger directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ger"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load resolves credentials: the environment wins when all three
// variables are set and non-empty, otherwise the config file is read.
func Load() (*Config, error) {
	if c, ok := fromEnv(); ok {
		return normalize(c)
	}
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

func fromEnv() (*Config, bool) {
	host := os.Getenv("GERRIT_HOST")
	user := os.Getenv("GERRIT_USERNAME")
	pass := os.Getenv("GERRIT_PASSWORD")
	if host == "" || user == "" || pass == "" {
		return nil, false
	}
	return &Config{Host: host, Username: user, Password: pass}, true
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &InvalidError{Reason: fmt.Sprintf("%s: %v", path, err)}
	}
	return normalize(&c)
}

func normalize(c *Config) (*Config, error) {
	if c.Username == "" || c.Password == "" {
		return nil, &InvalidError{Reason: "username and password must be non-empty"}
	}
	host, err := ident.NormalizeHost(c.Host)
	if err != nil {
		return nil, &InvalidError{Reason: err.Error()}
	}
	c.Host = host
	return c, nil
}

// Save writes the config file with owner-only permissions, creating
// ~/.ger (0700) if needed. Only the setup flow calls this.
func Save(c *Config) error {
	normalized, err := normalize(c)
	if err != nil {
		return err
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.json")
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
