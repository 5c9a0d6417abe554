// Package config loads the client configuration from ~/.quill/config.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

type Config struct {
	ServerURL string `yaml:"server_url"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// Dir returns the quill configuration directory (~/.quill).
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".quill")
}

// Load reads the config file at path. A missing file yields the defaults;
// the QUILL_SERVER_URL environment variable overrides the file either way.
func Load(path string) (Config, error) {
	cfg := Config{ServerURL: defaultServerURL}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
		if cfg.ServerURL == "" {
			cfg.ServerURL = defaultServerURL
		}
	}

	if url := os.Getenv("QUILL_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}

	return cfg, nil
}

// Save writes the config to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
