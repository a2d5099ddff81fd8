// Package config reads and writes ~/.agentsync/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/agentsync/agentsync/internal/environ"
	"github.com/agentsync/agentsync/internal/events"
)

// Config is the application configuration.
type Config struct {
	Version     string              `yaml:"version"`
	Environment environ.Descriptor  `yaml:"environment,omitempty"`
	SyncMCP     bool                `yaml:"sync_mcp"`
	SyncSkills  bool                `yaml:"sync_skills"`
	ItemTimeout Duration            `yaml:"item_timeout,omitempty"`
	SSH         []environ.SSHConfig `yaml:"ssh,omitempty"`

	ActiveProfile string `yaml:"active_profile,omitempty"`
}

// Duration round-trips through YAML in "30s" form. yaml.v3 does not decode
// duration strings into time.Duration on its own.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// DefaultItemTimeout bounds a single transfer; expiry is treated exactly
// like a transfer error and the pass continues.
const DefaultItemTimeout = Duration(30 * time.Second)

// Default returns a config with defaults filled in.
func Default() Config {
	return Config{
		Version:     "1",
		SyncMCP:     true,
		SyncSkills:  true,
		ItemTimeout: DefaultItemTimeout,
	}
}

// Parse parses config.yaml bytes, applying defaults for absent fields.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	return cfg, nil
}

// Marshal serializes a Config to YAML bytes.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Load reads the config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Save writes the config file and announces the change.
func Save(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating sync dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	events.Bus.Publish(events.TopicConfigChanged)
	return nil
}

// SSHByName finds a configured SSH connection.
func (c Config) SSHByName(name string) (environ.SSHConfig, bool) {
	for _, conn := range c.SSH {
		if conn.Name == name {
			return conn, true
		}
	}
	return environ.SSHConfig{}, false
}
