// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"panelquote/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains catalog document settings
	Catalog CatalogConfig `json:"catalog"`

	// Rules is the path to the pricing-rules document (HCL)
	Rules string `json:"rules"`

	// Server contains tool-server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains catalog document settings
type CatalogConfig struct {
	// Path is the path to the catalog document
	Path string `json:"path"`

	// Format is the document format (json, yaml)
	Format string `json:"format"`
}

// ServerConfig contains tool-server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".panelquote")

	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Path:   filepath.Join(base, "catalog.json"),
			Format: "json",
		},
		Rules: filepath.Join(base, "rules.hcl"),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
