package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// SyncDir returns ~/.agentsync.
func SyncDir() string {
	return filepath.Join(home(), ".agentsync")
}

// ConfigFile returns ~/.agentsync/config.yaml.
func ConfigFile() string {
	return filepath.Join(SyncDir(), "config.yaml")
}

// MappingsFile returns ~/.agentsync/mappings.yaml.
func MappingsFile() string {
	return filepath.Join(SyncDir(), "mappings.yaml")
}

// StatusFile returns ~/.agentsync/status.yaml.
func StatusFile() string {
	return filepath.Join(SyncDir(), "status.yaml")
}

// ServersFile returns ~/.agentsync/servers.json.
func ServersFile() string {
	return filepath.Join(SyncDir(), "servers.json")
}

// SkillsFile returns ~/.agentsync/skills.json.
func SkillsFile() string {
	return filepath.Join(SyncDir(), "skills.json")
}

// SkillsDir returns ~/.agentsync/skills, the managed skill tree.
func SkillsDir() string {
	return filepath.Join(SyncDir(), "skills")
}

// ProfilesDir returns ~/.agentsync/profiles.
func ProfilesDir() string {
	return filepath.Join(SyncDir(), "profiles")
}
