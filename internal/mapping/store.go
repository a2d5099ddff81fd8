package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/agentsync/agentsync/internal/events"
)

// Store persists the mapping list as a YAML document. The caller owns
// cross-session exclusivity; Store itself does no locking.
type Store struct {
	Path string
}

// NewStore returns a store over the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

type storeDoc struct {
	Mappings []FileMapping `yaml:"mappings"`
}

// Load reads all mappings. A missing file is an empty list, not an error.
func (s *Store) Load() ([]FileMapping, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mappings: %w", err)
	}
	var doc storeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mappings: %w", err)
	}
	return doc.Mappings, nil
}

// Save writes the full mapping list and announces the change.
func (s *Store) Save(mappings []FileMapping) error {
	data, err := yaml.Marshal(storeDoc{Mappings: mappings})
	if err != nil {
		return fmt.Errorf("marshaling mappings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating sync dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("writing mappings: %w", err)
	}
	events.Bus.Publish(events.TopicConfigChanged)
	return nil
}

// Add appends a mapping, assigning an id when absent.
func (s *Store) Add(m FileMapping) (FileMapping, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	mappings, err := s.Load()
	if err != nil {
		return FileMapping{}, err
	}
	mappings = append(mappings, m)
	return m, s.Save(mappings)
}

// Remove deletes the mapping with the given id.
func (s *Store) Remove(id string) error {
	mappings, err := s.Load()
	if err != nil {
		return err
	}
	kept := mappings[:0]
	found := false
	for _, m := range mappings {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return fmt.Errorf("no mapping with id %s", id)
	}
	return s.Save(kept)
}

// SetEnabled flips a mapping's enabled flag.
func (s *Store) SetEnabled(id string, enabled bool) error {
	mappings, err := s.Load()
	if err != nil {
		return err
	}
	for i := range mappings {
		if mappings[i].ID == id {
			mappings[i].Enabled = enabled
			return s.Save(mappings)
		}
	}
	return fmt.Errorf("no mapping with id %s", id)
}

// Reset replaces all mappings with the default seed set.
func (s *Store) Reset() error {
	return s.Save(Defaults())
}

// Defaults returns the seed mappings for the supported tools. Local paths use
// Windows template variables on Windows hosts and ~-relative POSIX paths
// elsewhere; remote paths always stay ~-relative for the remote shell to
// expand.
func Defaults() []FileMapping {
	localHome := "~"
	if runtime.GOOS == "windows" {
		localHome = "%USERPROFILE%"
	}
	join := func(parts ...string) string {
		p := localHome
		for _, part := range parts {
			if runtime.GOOS == "windows" {
				p += `\` + part
			} else {
				p += "/" + part
			}
		}
		return p
	}
	return []FileMapping{
		{
			ID:         uuid.NewString(),
			Name:       "opencode config",
			Module:     ModuleOpenCode,
			LocalPath:  join(".config", "opencode", "config.json"),
			RemotePath: "~/.config/opencode/config.json",
			Enabled:    true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "claude skills",
			Module:      ModuleClaude,
			LocalPath:   join(".claude", "skills"),
			RemotePath:  "~/.claude/skills",
			Enabled:     true,
			IsDirectory: true,
			Recursive:   true,
		},
		{
			ID:         uuid.NewString(),
			Name:       "claude settings",
			Module:     ModuleClaude,
			LocalPath:  join(".claude", "settings.json"),
			RemotePath: "~/.claude/settings.json",
			Enabled:    true,
		},
		{
			ID:         uuid.NewString(),
			Name:       "codex config",
			Module:     ModuleCodex,
			LocalPath:  join(".codex", "config.toml"),
			RemotePath: "~/.codex/config.toml",
			Enabled:    true,
		},
	}
}
