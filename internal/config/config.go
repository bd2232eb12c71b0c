// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the nutrismart client.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete nutrismart client configuration.
type Config struct {
	// AppID namespaces this deployment's documents in the remote store.
	// Must match the APP_ID configured on the backend.
	AppID string `toml:"app_id" json:"app_id"`

	// API configuration (the NutriSmart backend)
	API APIConfig `toml:"api" json:"api"`

	// Identity provider configuration
	Identity IdentityConfig `toml:"identity" json:"identity"`

	// Document store configuration
	Store StoreConfig `toml:"store" json:"store"`

	// Bills inbox configuration
	Bills BillsConfig `toml:"bills" json:"bills"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains the backend API settings.
type APIConfig struct {
	// BaseURL is the base URL of the NutriSmart API, e.g.
	// "http://localhost:8000/api/v1/". Chat, profile and bill endpoints
	// hang off this prefix.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// IdentityConfig contains the identity-provider settings.
type IdentityConfig struct {
	// Endpoint is the base URL of the identity provider.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// APIKey is the public client key sent with identity requests.
	APIKey string `toml:"api_key" json:"api_key"`
}

// StoreConfig contains the realtime document store settings.
type StoreConfig struct {
	// Endpoint is the HTTPS endpoint for document writes.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// ListenEndpoint is the websocket endpoint for live snapshots.
	// Defaults to Endpoint with the scheme switched to ws/wss.
	ListenEndpoint string `toml:"listen_endpoint" json:"listen_endpoint"`
}

// BillsConfig contains the grocery bill inbox settings.
type BillsConfig struct {
	// InboxDir is watched for dropped receipt JSON files.
	// Empty disables the watcher. Default: ~/.nutrismart/bills
	InboxDir string `toml:"inbox_dir" json:"inbox_dir"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// MarkdownWidth is the wrap width for rendered assistant replies.
	MarkdownWidth int `toml:"markdown_width" json:"markdown_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		AppID: "nutrismart",
		API: APIConfig{
			BaseURL: "http://localhost:8000/api/v1/",
		},
		Identity: IdentityConfig{
			Endpoint: "https://identity.nutrismart.app/v1",
		},
		Store: StoreConfig{
			Endpoint: "https://store.nutrismart.app/v1",
		},
		UI: UIConfig{
			Theme:         "dark",
			MarkdownWidth: 80,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the nutrismart configuration directory (~/.nutrismart).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".nutrismart"), nil
}

// PathTOML returns the path of the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path of the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultBillsDir returns the default receipt inbox directory.
func DefaultBillsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bills"), nil
}

// StateDir returns the directory for cached snapshot state.
func StateDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration, trying TOML first, then JSON, then falling
// back to defaults. Environment overrides apply in every case, and the
// result is always validated.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	if path, err := PathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads a config file chosen by extension, for --config flags
// and tests.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	case ".json":
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies NUTRISMART_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NUTRISMART_APP_ID"); v != "" {
		c.AppID = v
	}
	if v := os.Getenv("NUTRISMART_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("NUTRISMART_IDENTITY_URL"); v != "" {
		c.Identity.Endpoint = v
	}
	if v := os.Getenv("NUTRISMART_IDENTITY_KEY"); v != "" {
		c.Identity.APIKey = v
	}
	if v := os.Getenv("NUTRISMART_STORE_URL"); v != "" {
		c.Store.Endpoint = v
	}
	if v := os.Getenv("NUTRISMART_STORE_LISTEN_URL"); v != "" {
		c.Store.ListenEndpoint = v
	}
	if v := os.Getenv("NUTRISMART_BILLS_DIR"); v != "" {
		c.Bills.InboxDir = v
	}
	if v := os.Getenv("NUTRISMART_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// DEFAULT FILLING
// =============================================================================

// SetDefaults fills derived and empty fields after loading.
func (c *Config) SetDefaults() {
	if c.AppID == "" {
		c.AppID = "nutrismart"
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
	if c.UI.MarkdownWidth <= 0 {
		c.UI.MarkdownWidth = 80
	}
	if c.Store.ListenEndpoint == "" && c.Store.Endpoint != "" {
		c.Store.ListenEndpoint = deriveListenEndpoint(c.Store.Endpoint)
	}
	if c.Bills.InboxDir == "" {
		if dir, err := DefaultBillsDir(); err == nil {
			c.Bills.InboxDir = dir
		}
	}
}

// deriveListenEndpoint switches an http(s) endpoint to its ws(s) twin.
func deriveListenEndpoint(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects all validation failures.
type ValidateErrors []ValidationError

// Error implements the error interface.
func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.AppID == "" {
		errs = append(errs, ValidationError{Field: "app_id", Message: "must not be empty"})
	}

	checkURL := func(field, value string, schemes ...string) {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: "must not be empty"})
			return
		}
		u, err := url.Parse(value)
		if err != nil {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)})
			return
		}
		for _, s := range schemes {
			if u.Scheme == s {
				return
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("scheme %q not allowed, want one of %s", u.Scheme, strings.Join(schemes, ", ")),
		})
	}

	checkURL("api.base_url", c.API.BaseURL, "http", "https")
	checkURL("identity.endpoint", c.Identity.Endpoint, "http", "https")
	checkURL("store.endpoint", c.Store.Endpoint, "http", "https")
	checkURL("store.listen_endpoint", c.Store.ListenEndpoint, "ws", "wss", "http", "https")

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be dark or light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to the default location.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
