// Package commands is the operation layer between the CLI and the core:
// it loads config and stores, builds the environment collaborator, assembles
// the sync plan, and drives imports through the duplicate gate.
package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentsync/agentsync/internal/config"
	"github.com/agentsync/agentsync/internal/environ"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/pathconv"
	"github.com/agentsync/agentsync/internal/servers"
	"github.com/agentsync/agentsync/internal/skills"
	"github.com/agentsync/agentsync/internal/status"
	"github.com/agentsync/agentsync/internal/syncengine"
)

// runState tracks what the runner is doing. Seeding defaults is an explicit
// state, not a "skip next reload" flag: a config-changed event observed while
// seeding is the runner's own write and must not re-trigger a pass.
type runState int

const (
	stateIdle runState = iota
	stateSavingDefaults
	stateSyncing
)

// Runner owns the session-level guards around sync passes. The core engine
// is stateless; overlap prevention lives here.
type Runner struct {
	ConfigPath   string
	Mappings     *mapping.Store
	Servers      *servers.Store
	Skills       *skills.Store
	SkillsDir    string
	Status       *status.Store
	NewEnv       func(cfg config.Config) (environ.Environment, error) // override for tests

	mu    sync.Mutex
	state runState
}

// ShouldReload reports whether a config-changed event warrants reloading
// state. The runner's own defaults write answers false.
func (r *Runner) ShouldReload() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateIdle
}

// SeedDefaults writes the default mapping set when no mappings exist yet.
func (r *Runner) SeedDefaults() error {
	r.mu.Lock()
	if r.state != stateIdle {
		r.mu.Unlock()
		return fmt.Errorf("runner busy")
	}
	r.state = stateSavingDefaults
	r.mu.Unlock()
	defer r.setIdle()

	existing, err := r.Mappings.Load()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return r.Mappings.Reset()
}

func (r *Runner) setIdle() {
	r.mu.Lock()
	r.state = stateIdle
	r.mu.Unlock()
}

// buildEnvironment constructs the collaborator for the configured target.
func buildEnvironment(cfg config.Config) (environ.Environment, error) {
	switch cfg.Environment.Kind {
	case environ.KindWSL:
		if cfg.Environment.Identity == "" {
			return nil, fmt.Errorf("no WSL distro selected; run 'agentsync env use'")
		}
		return environ.NewWSL(cfg.Environment.Identity), nil
	case environ.KindSSH:
		conn, ok := cfg.SSHByName(cfg.Environment.Identity)
		if !ok {
			return nil, fmt.Errorf("no SSH connection named %q in config", cfg.Environment.Identity)
		}
		return environ.NewSSHClient(conn)
	case "":
		return nil, fmt.Errorf("no environment configured; run 'agentsync env use'")
	}
	return nil, fmt.Errorf("unknown environment kind %q", cfg.Environment.Kind)
}

// BuildPlan assembles the three phases: resolved file mappings, rendered MCP
// configs per module, and the managed skill tree.
func BuildPlan(cfg config.Config, maps []mapping.FileMapping, srvStore *servers.Store, skillStore *skills.Store, local pathconv.Side) (syncengine.Plan, error) {
	var plan syncengine.Plan

	resolver := &mapping.Resolver{Local: local}
	items, resolveErrs := resolver.Resolve(maps)
	plan.ResolveErrors = resolveErrs
	for _, item := range items {
		plan.Files = append(plan.Files, syncengine.Item{
			Name:       item.Mapping.Name + ": " + item.LocalPath,
			LocalPath:  item.LocalPath,
			RemotePath: item.RemotePath,
			Dir:        item.Kind == mapping.KindDirectory,
		})
	}

	if cfg.SyncMCP {
		list, err := srvStore.Load()
		if err != nil {
			return plan, err
		}
		for _, module := range mapping.Modules() {
			configs := servers.ConfigMap(list, module)
			if len(configs) == 0 {
				continue
			}
			materialized, _ := servers.ResolveEnvVars(servers.ExpandHomePaths(configs))
			data, err := servers.MarshalMCPConfig(materialized)
			if err != nil {
				return plan, err
			}
			plan.MCP = append(plan.MCP, syncengine.Item{
				Name:       string(module) + " mcp config",
				Content:    data,
				RemotePath: remoteMCPPath(module),
			})
		}
	}

	if cfg.SyncSkills {
		skillList, err := skillStore.Load()
		if err != nil {
			return plan, err
		}
		for _, sk := range skillList {
			for _, ref := range sk.Files() {
				name := "skill " + sk.Name
				if ref.Rel != "" && ref.Rel != "SKILL.md" {
					name += "/" + ref.Rel
				}
				plan.Skills = append(plan.Skills, syncengine.Item{
					Name:       name,
					LocalPath:  ref.Local,
					RemotePath: remoteSkillPath(sk, ref.Rel),
				})
			}
		}
	}

	return plan, nil
}

// remoteMCPPath is where each tool reads its MCP config on the remote side.
func remoteMCPPath(module mapping.Module) string {
	switch module {
	case mapping.ModuleOpenCode:
		return "~/.config/opencode/.mcp.json"
	case mapping.ModuleCodex:
		return "~/.codex/.mcp.json"
	default:
		return "~/.claude/.mcp.json"
	}
}

// remoteSkillPath mirrors a managed skill into the remote skill tree. The
// leading tilde stays for the remote shell.
func remoteSkillPath(sk skills.Skill, rel string) string {
	base := "~/.claude/skills/"
	if sk.Module == mapping.ModuleOpenCode {
		base = "~/.config/opencode/skills/"
	}
	if !sk.IsDir() {
		return base + sk.Name + ".md"
	}
	return base + sk.Name + "/" + rel
}

// Sync runs one pass end to end. Overlapping passes are rejected by the
// runner's state guard.
func (r *Runner) Sync(ctx context.Context, dryRun bool) (*syncengine.Result, error) {
	r.mu.Lock()
	if r.state != stateIdle {
		r.mu.Unlock()
		return nil, fmt.Errorf("a sync pass is already running")
	}
	r.state = stateSyncing
	r.mu.Unlock()
	defer r.setIdle()

	cfg, err := config.Load(r.ConfigPath)
	if err != nil {
		return nil, err
	}

	maps, err := r.Mappings.Load()
	if err != nil {
		return nil, err
	}

	local := pathconv.HostSide()
	plan, err := BuildPlan(cfg, maps, r.Servers, r.Skills, local)
	if err != nil {
		return nil, err
	}

	newEnv := r.NewEnv
	if newEnv == nil {
		newEnv = buildEnvironment
	}
	env, err := newEnv(cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := env.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	engine := &syncengine.Engine{
		Env:    env,
		Local:  local,
		Remote: pathconv.RemoteSide(cfg.Environment.Kind),
		Status: r.Status,
		Opts: syncengine.Options{
			SyncMCP:     cfg.SyncMCP,
			SyncSkills:  cfg.SyncSkills,
			ItemTimeout: time.Duration(cfg.ItemTimeout),
			DryRun:      dryRun,
		},
	}
	return engine.Run(ctx, plan), nil
}
