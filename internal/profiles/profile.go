// Package profiles manages named provider profiles: per-tool selections of
// servers, skills and settings a user can switch between. A profile is a
// plain YAML document; the active profile name lives in the app config.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/agentsync/agentsync/internal/mapping"
)

// Profile selects which managed entities apply when it is active.
type Profile struct {
	Module   mapping.Module `yaml:"module"`
	Servers  []string       `yaml:"servers,omitempty"`  // server names
	Skills   []string       `yaml:"skills,omitempty"`   // skill names
	Settings map[string]any `yaml:"settings,omitempty"` // opaque tool settings overlay
}

// Parse parses a profile YAML document. An empty document is a valid empty
// profile.
func Parse(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	if p.Module != "" {
		if _, err := mapping.ParseModule(string(p.Module)); err != nil {
			return Profile{}, err
		}
	}
	return p, nil
}

// Marshal serializes a profile.
func Marshal(p Profile) ([]byte, error) {
	return yaml.Marshal(p)
}

// Read loads the named profile from dir.
func Read(dir, name string) (Profile, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %q: %w", name, err)
	}
	return Parse(data)
}

// Write saves the named profile into dir.
func Write(dir, name string, p Profile) error {
	data, err := Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating profiles dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0644)
}

// Delete removes the named profile.
func Delete(dir, name string) error {
	if err := os.Remove(filepath.Join(dir, name+".yaml")); err != nil {
		return fmt.Errorf("deleting profile %q: %w", name, err)
	}
	return nil
}

// List returns profile names in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}
