package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/internal/commands"
	"github.com/agentsync/agentsync/internal/config"
	"github.com/agentsync/agentsync/internal/environ"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/pathconv"
	"github.com/agentsync/agentsync/internal/servers"
	"github.com/agentsync/agentsync/internal/skills"
	"github.com/agentsync/agentsync/internal/status"
)

// recordingEnv is a minimal in-memory Environment for runner tests.
type recordingEnv struct {
	writes map[string][]byte
	cmds   []string
}

func (r *recordingEnv) Descriptor() environ.Descriptor {
	return environ.Descriptor{Kind: environ.KindSSH, Identity: "test"}
}
func (r *recordingEnv) CheckAvailability(ctx context.Context) error { return nil }
func (r *recordingEnv) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, environ.ErrNotFound
}
func (r *recordingEnv) WriteFile(ctx context.Context, path string, data []byte) error {
	if r.writes == nil {
		r.writes = make(map[string][]byte)
	}
	r.writes[path] = data
	return nil
}
func (r *recordingEnv) ListDirectory(ctx context.Context, path string) ([]environ.Entry, error) {
	return nil, environ.ErrNotFound
}
func (r *recordingEnv) RunCommand(ctx context.Context, command string) (string, error) {
	r.cmds = append(r.cmds, command)
	return "", nil
}

func newRunner(t *testing.T) (*commands.Runner, *recordingEnv) {
	t.Helper()
	dir := t.TempDir()
	env := &recordingEnv{}
	r := &commands.Runner{
		ConfigPath: filepath.Join(dir, "config.yaml"),
		Mappings:   mapping.NewStore(filepath.Join(dir, "mappings.yaml")),
		Servers:    servers.NewStore(filepath.Join(dir, "servers.json")),
		Skills:     skills.NewStore(filepath.Join(dir, "skills.json")),
		SkillsDir:  filepath.Join(dir, "skills"),
		Status:     status.NewStore(filepath.Join(dir, "status.yaml")),
		NewEnv:     func(cfg config.Config) (environ.Environment, error) { return env, nil },
	}
	return r, env
}

// --- SeedDefaults Tests ---

func TestSeedDefaults_SeedsWhenEmpty(t *testing.T) {
	r, _ := newRunner(t)

	require.NoError(t, r.SeedDefaults())

	maps, err := r.Mappings.Load()
	require.NoError(t, err)
	assert.Len(t, maps, len(mapping.Defaults()))
}

func TestSeedDefaults_NoopWhenPopulated(t *testing.T) {
	r, _ := newRunner(t)
	custom, err := r.Mappings.Add(mapping.FileMapping{Name: "mine", Module: mapping.ModuleClaude, LocalPath: "/a", RemotePath: "~/a", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, r.SeedDefaults())

	maps, err := r.Mappings.Load()
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, custom.ID, maps[0].ID)
}

func TestShouldReload_IdleRunner(t *testing.T) {
	r, _ := newRunner(t)
	assert.True(t, r.ShouldReload())
}

// --- BuildPlan Tests ---

func TestBuildPlan_FilesAndResolveErrors(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(local, []byte("{}"), 0644))

	cfg := config.Default()
	cfg.SyncMCP = false
	cfg.SyncSkills = false

	maps := []mapping.FileMapping{
		{Name: "good", Module: mapping.ModuleClaude, LocalPath: local, RemotePath: "~/.claude/settings.json", Enabled: true},
		{Name: "broken", Module: mapping.ModuleClaude, LocalPath: "%NOPE%/x", RemotePath: "~/x", Enabled: true},
	}

	plan, err := commands.BuildPlan(cfg, maps, servers.NewStore(filepath.Join(dir, "s.json")),
		skills.NewStore(filepath.Join(dir, "k.json")), pathconv.Side{Syntax: pathconv.SyntaxPOSIX})
	require.NoError(t, err)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, "~/.claude/settings.json", plan.Files[0].RemotePath)
	assert.Len(t, plan.ResolveErrors, 1)
	assert.Empty(t, plan.MCP)
	assert.Empty(t, plan.Skills)
}

func TestBuildPlan_RendersMCPPerModule(t *testing.T) {
	dir := t.TempDir()
	store := servers.NewStore(filepath.Join(dir, "servers.json"))
	require.NoError(t, store.Add(
		servers.New("ctx7", mapping.ModuleClaude, []byte(`{"command":"npx"}`)),
		servers.New("oc", mapping.ModuleOpenCode, []byte(`{"command":"node"}`)),
	))

	cfg := config.Default()
	cfg.SyncSkills = false

	plan, err := commands.BuildPlan(cfg, nil, store,
		skills.NewStore(filepath.Join(dir, "k.json")), pathconv.Side{Syntax: pathconv.SyntaxPOSIX})
	require.NoError(t, err)
	require.Len(t, plan.MCP, 2)

	remotes := []string{plan.MCP[0].RemotePath, plan.MCP[1].RemotePath}
	assert.Contains(t, remotes, "~/.claude/.mcp.json")
	assert.Contains(t, remotes, "~/.config/opencode/.mcp.json")
	for _, item := range plan.MCP {
		assert.Contains(t, string(item.Content), "mcpServers")
	}
}

func TestBuildPlan_SkillFiles(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "managed", "web-search")
	require.NoError(t, os.MkdirAll(filepath.Join(managed, "scripts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(managed, "SKILL.md"), []byte("m"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(managed, "scripts", "run.sh"), []byte("s"), 0644))

	store := skills.NewStore(filepath.Join(dir, "skills.json"))
	require.NoError(t, store.Add(skills.Skill{
		ID: "id-1", Name: "web-search", Module: mapping.ModuleClaude,
		Path: managed, Fingerprint: "skill:x",
	}))

	cfg := config.Default()
	cfg.SyncMCP = false

	plan, err := commands.BuildPlan(cfg, nil, servers.NewStore(filepath.Join(dir, "s.json")),
		store, pathconv.Side{Syntax: pathconv.SyntaxPOSIX})
	require.NoError(t, err)
	require.Len(t, plan.Skills, 2)

	remotes := []string{plan.Skills[0].RemotePath, plan.Skills[1].RemotePath}
	assert.Contains(t, remotes, "~/.claude/skills/web-search/SKILL.md")
	assert.Contains(t, remotes, "~/.claude/skills/web-search/scripts/run.sh")
}

// --- Sync Tests ---

func TestSync_EndToEnd(t *testing.T) {
	r, env := newRunner(t)

	dir := t.TempDir()
	local := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(local, []byte(`{"model":"opus"}`), 0644))
	_, err := r.Mappings.Add(mapping.FileMapping{
		Name: "claude settings", Module: mapping.ModuleClaude,
		LocalPath: local, RemotePath: "~/.claude/settings.json", Enabled: true,
	})
	require.NoError(t, err)

	result, err := r.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, `{"model":"opus"}`, string(env.writes["~/.claude/settings.json"]))

	st, err := r.Status.Load()
	require.NoError(t, err)
	assert.Equal(t, status.StateSuccess, st.LastSyncStatus)
	assert.Equal(t, 1, st.SyncedCount)
}

func TestSync_DryRunWritesNothing(t *testing.T) {
	r, env := newRunner(t)

	dir := t.TempDir()
	local := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(local, []byte("{}"), 0644))
	_, err := r.Mappings.Add(mapping.FileMapping{
		Name: "settings", Module: mapping.ModuleClaude,
		LocalPath: local, RemotePath: "~/.claude/settings.json", Enabled: true,
	})
	require.NoError(t, err)

	result, err := r.Sync(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.SyncedFiles, 1)
	assert.Empty(t, env.writes)
}
