package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/events"
	"github.com/agentsync/agentsync/internal/syncengine"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync pass against the configured environment",
	Long:  "Resolves the enabled mappings, pushes files, MCP configs, and skills to the remote environment, and records the outcome. Partial failures do not abort the pass.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner()
		if err := runner.SeedDefaults(); err != nil {
			return err
		}

		// Progress arrives synchronously between items; render it off the
		// emitting goroutine so the pass never stalls on the terminal.
		handler := func(p syncengine.Progress) {
			fmt.Printf("[%s %d/%d] %s: %s\n", p.Phase, p.Current, p.Total, p.CurrentItem, p.Message)
		}
		if err := events.Bus.SubscribeAsync(events.TopicSyncProgress, handler, false); err != nil {
			return err
		}
		defer events.Bus.Unsubscribe(events.TopicSyncProgress, handler)

		// Ctrl-C finishes the in-flight item, then stops.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		result, err := runner.Sync(ctx, syncDryRun)
		if err != nil {
			return err
		}
		events.Bus.WaitAsync()

		fmt.Println()
		fmt.Printf("Synced %d file(s) (%s), skipped %d, %d error(s)\n",
			len(result.SyncedFiles), humanize.Bytes(result.BytesWritten),
			len(result.SkippedFiles), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		if !result.Success {
			return fmt.Errorf("sync finished with %d error(s)", len(result.Errors))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "resolve and read but skip remote writes")
}
