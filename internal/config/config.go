// Package config loads user preferences from ~/.todoisland/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// DefaultAPIURL is the backend used when nothing is configured
const DefaultAPIURL = "http://localhost:8080"

// Config holds user preferences
type Config struct {
	APIURL          string        `yaml:"api_url" json:"api_url"`                   // Backend base URL
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`   // Per-request timeout
	CredentialStore string        `yaml:"credential_store" json:"credential_store"` // "file" or "sqlite"
	ConfirmDelete   bool          `yaml:"confirm_delete" json:"confirm_delete"`     // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns ~/.todoisland
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".todoisland"), nil
}

// Path returns ~/.todoisland/config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "todo.log")
	}

	return &Config{
		APIURL:          DefaultAPIURL,
		RequestTimeout:  30 * time.Second,
		CredentialStore: StoreFile,
		ConfirmDelete:   true,
		LogLevel:        "INFO",
		LogFile:         logPath,
		LogConsole:      false,
	}
}

// applyEnv overrides fields from TODOISLAND_* variables
func (c *Config) applyEnv() {
	c.APIURL = getEnv("TODOISLAND_API_URL", c.APIURL)
	c.LogLevel = getEnv("TODOISLAND_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("TODOISLAND_LOG_FILE", c.LogFile)
	c.CredentialStore = getEnv("TODOISLAND_CREDENTIAL_STORE", c.CredentialStore)
	if v := os.Getenv("TODOISLAND_LOG_CONSOLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogConsole = b
		}
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks values that cannot be used as given
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	switch c.CredentialStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("credential_store must be %q or %q, got %q", StoreFile, StoreSQLite, c.CredentialStore)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Load loads config from ~/.todoisland/config.yaml
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path. A missing file yields defaults; the
// environment overrides both.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves config to ~/.todoisland/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
