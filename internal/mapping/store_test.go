package mapping_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/internal/mapping"
)

func newStore(t *testing.T) *mapping.Store {
	t.Helper()
	return mapping.NewStore(filepath.Join(t.TempDir(), "mappings.yaml"))
}

// --- Store Tests ---

func TestStore_LoadMissingFile(t *testing.T) {
	mappings, err := newStore(t).Load()
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestStore_AddAssignsID(t *testing.T) {
	store := newStore(t)

	m, err := store.Add(mapping.FileMapping{
		Name:       "codex config",
		Module:     mapping.ModuleCodex,
		LocalPath:  "~/.codex/config.toml",
		RemotePath: "~/.codex/config.toml",
		Enabled:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, m, loaded[0])
}

func TestStore_RoundTripFlags(t *testing.T) {
	store := newStore(t)

	_, err := store.Add(mapping.FileMapping{
		Name:        "claude skills",
		Module:      mapping.ModuleClaude,
		LocalPath:   "~/.claude/skills",
		RemotePath:  "~/.claude/skills",
		Enabled:     true,
		IsDirectory: true,
		Recursive:   true,
	})
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].IsDirectory)
	assert.True(t, loaded[0].Recursive)
	assert.False(t, loaded[0].IsPattern)
}

func TestStore_Remove(t *testing.T) {
	store := newStore(t)
	m, err := store.Add(mapping.FileMapping{Name: "a", Module: mapping.ModuleClaude, LocalPath: "/a", RemotePath: "/b", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, store.Remove(m.ID))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_RemoveUnknownID(t *testing.T) {
	err := newStore(t).Remove("nope")
	assert.Error(t, err)
}

func TestStore_SetEnabled(t *testing.T) {
	store := newStore(t)
	m, err := store.Add(mapping.FileMapping{Name: "a", Module: mapping.ModuleClaude, LocalPath: "/a", RemotePath: "/b", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, store.SetEnabled(m.ID, false))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, loaded[0].Enabled)

	assert.Error(t, store.SetEnabled("nope", true))
}

func TestStore_Reset(t *testing.T) {
	store := newStore(t)
	_, err := store.Add(mapping.FileMapping{Name: "custom", Module: mapping.ModuleClaude, LocalPath: "/a", RemotePath: "/b"})
	require.NoError(t, err)

	require.NoError(t, store.Reset())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, len(mapping.Defaults()), len(loaded))
	for _, m := range loaded {
		assert.NotEmpty(t, m.ID)
		assert.True(t, m.Enabled)
	}
}

// --- Defaults Tests ---

func TestDefaults_CoverEveryModule(t *testing.T) {
	seen := make(map[mapping.Module]bool)
	for _, m := range mapping.Defaults() {
		seen[m.Module] = true
		assert.NotEmpty(t, m.LocalPath)
		assert.NotEmpty(t, m.RemotePath)
	}
	for _, mod := range mapping.Modules() {
		assert.True(t, seen[mod], "no default mapping for %s", mod)
	}
}
