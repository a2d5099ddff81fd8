// Package syncengine runs a sync pass: it pushes the resolved work items,
// the materialized MCP configs, and the managed skill tree into the target
// environment, one item at a time, reporting progress after every item and
// continuing past per-item failures.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/asaskevich/EventBus"

	"github.com/agentsync/agentsync/internal/environ"
	"github.com/agentsync/agentsync/internal/events"
	"github.com/agentsync/agentsync/internal/pathconv"
	"github.com/agentsync/agentsync/internal/status"
)

// Phase identifies one stage of a sync pass. Phases run in a fixed order;
// mcp and skills are independently skippable by configuration.
type Phase string

const (
	PhaseFiles  Phase = "files"
	PhaseMCP    Phase = "mcp"
	PhaseSkills Phase = "skills"
)

// Item is one unit of transfer. Either LocalPath points at a host file to
// read, or Content carries an already-materialized payload (rendered MCP
// config). Dir items only ensure the remote directory exists.
type Item struct {
	Name       string
	LocalPath  string
	Content    []byte
	RemotePath string
	Dir        bool
}

// Plan is the full input of one pass. ResolveErrors carries per-mapping
// resolution failures in mapping-list order; they are folded into the session
// error list before any transfer runs.
type Plan struct {
	Files         []Item
	MCP           []Item
	Skills        []Item
	ResolveErrors []error
}

// Progress is emitted on the bus after every item.
type Progress struct {
	Phase       Phase
	CurrentItem string
	Current     int
	Total       int
	Message     string
}

// Result aggregates one sync pass. Mutated only within the pass; immutable
// once returned. Success is true exactly when Errors is empty.
type Result struct {
	Success      bool
	SyncedFiles  []string
	SkippedFiles []string
	Errors       []string
	BytesWritten uint64
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Options tunes a pass.
type Options struct {
	SyncMCP     bool
	SyncSkills  bool
	ItemTimeout time.Duration // per-item bound; expiry counts as a transfer error
	DryRun      bool          // translate and read but skip remote writes
}

// Engine executes sync passes against one environment. Stateless between
// passes; the caller guards against overlapping passes.
type Engine struct {
	Env    environ.Environment
	Local  pathconv.Side
	Remote pathconv.Side
	Status *status.Store // optional
	Bus    EventBus.Bus  // defaults to the global bus
	Opts   Options
}

func (e *Engine) bus() EventBus.Bus {
	if e.Bus != nil {
		return e.Bus
	}
	return events.Bus
}

// Run executes the pass. The environment is probed once up front; an
// unreachable environment aborts before any phase since no item could
// succeed, and becomes the session's sole error. Cancellation via ctx stops
// after the in-flight item; the result then covers only the items processed
// so far — there is no distinct cancelled status.
func (e *Engine) Run(ctx context.Context, plan Plan) *Result {
	result := &Result{StartedAt: time.Now().UTC()}

	for _, err := range plan.ResolveErrors {
		result.Errors = append(result.Errors, err.Error())
	}

	if err := e.Env.CheckAvailability(ctx); err != nil {
		var unavailable *environ.UnavailableError
		if errors.As(err, &unavailable) {
			result.Errors = []string{unavailable.Error()}
		} else {
			result.Errors = []string{err.Error()}
		}
		return e.finish(result)
	}

	phases := []struct {
		phase   Phase
		items   []Item
		enabled bool
	}{
		{PhaseFiles, plan.Files, true},
		{PhaseMCP, plan.MCP, e.Opts.SyncMCP},
		{PhaseSkills, plan.Skills, e.Opts.SyncSkills},
	}

	for _, p := range phases {
		if !p.enabled || len(p.items) == 0 {
			continue
		}
		if !e.runPhase(ctx, p.phase, p.items, result) {
			break
		}
	}

	return e.finish(result)
}

// runPhase transfers the phase's items in order. Returns false when the pass
// was cancelled and no further phase should run.
func (e *Engine) runPhase(ctx context.Context, phase Phase, items []Item, result *Result) bool {
	total := len(items)
	for i, item := range items {
		if ctx.Err() != nil {
			return false
		}

		message := e.syncItem(ctx, item, result)

		// Cancelled mid-item: the outcome above already reflects it;
		// stop without a distinct status.
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return false
		}

		e.bus().Publish(events.TopicSyncProgress, Progress{
			Phase:       phase,
			CurrentItem: item.Name,
			Current:     i + 1,
			Total:       total,
			Message:     message,
		})
	}
	return true
}

// syncItem transfers one item and appends its outcome to the result. Every
// failure is per-item: recorded, never propagated.
func (e *Engine) syncItem(ctx context.Context, item Item, result *Result) string {
	remote, err := pathconv.Translate(item.RemotePath, e.Local, e.Remote)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, err))
		return "path resolution failed"
	}

	content := item.Content
	if content == nil && !item.Dir {
		data, err := os.ReadFile(item.LocalPath)
		if err != nil {
			if os.IsNotExist(err) {
				result.SkippedFiles = append(result.SkippedFiles, item.Name)
				return "local source missing"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: read %s: %v", item.Name, item.LocalPath, err))
			return "read failed"
		}
		content = data
	}

	if e.Opts.DryRun {
		result.SyncedFiles = append(result.SyncedFiles, item.Name)
		return "would sync " + remote
	}

	itemCtx := ctx
	if e.Opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, e.Opts.ItemTimeout)
		defer cancel()
	}

	if item.Dir {
		if _, err := e.Env.RunCommand(itemCtx, "mkdir -p "+environ.Quote(remote)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, e.classify(ctx, itemCtx, remote, err)))
			return "mkdir failed"
		}
		result.SyncedFiles = append(result.SyncedFiles, item.Name)
		return "created " + remote
	}

	if err := e.Env.WriteFile(itemCtx, remote, content); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, e.classify(ctx, itemCtx, remote, err)))
		return "transfer failed"
	}
	result.SyncedFiles = append(result.SyncedFiles, item.Name)
	result.BytesWritten += uint64(len(content))
	return "synced " + remote
}

// classify maps a per-item timeout onto an ordinary transfer error so the
// pass continues; a parent cancellation passes through untouched.
func (e *Engine) classify(parent, item context.Context, path string, err error) error {
	if item.Err() != nil && parent.Err() == nil {
		return &environ.TransferError{Op: "write", Path: path, Err: fmt.Errorf("timed out after %s", e.Opts.ItemTimeout)}
	}
	return err
}

// finish seals the result, records it in the status store, and announces
// completion.
func (e *Engine) finish(result *Result) *Result {
	result.FinishedAt = time.Now().UTC()
	result.Success = len(result.Errors) == 0

	if e.Status != nil {
		_ = e.Status.Record(result.FinishedAt, len(result.SyncedFiles), len(result.SkippedFiles), result.Errors)
	}
	e.bus().Publish(events.TopicSyncCompleted, *result)
	return result
}
