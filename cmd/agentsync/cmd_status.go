package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/config"
	"github.com/agentsync/agentsync/internal/paths"
	"github.com/agentsync/agentsync/internal/status"
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleTitle = lipgloss.NewStyle().Bold(true)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show last sync status and target environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		st, err := status.NewStore(paths.StatusFile()).Load()
		if err != nil {
			return err
		}

		fmt.Println(styleTitle.Render("agentsync status"))

		if cfg.Environment.Kind == "" {
			fmt.Println(styleDim.Render("environment: not configured (run 'agentsync env use')"))
		} else {
			fmt.Printf("environment: %s\n", cfg.Environment)
		}
		fmt.Printf("phases: files")
		if cfg.SyncMCP {
			fmt.Printf(", mcp")
		}
		if cfg.SyncSkills {
			fmt.Printf(", skills")
		}
		fmt.Println()

		switch st.LastSyncStatus {
		case status.StateNever:
			fmt.Println(styleDim.Render("last sync: never"))
		case status.StateSuccess:
			fmt.Printf("last sync: %s at %s (%d synced, %d skipped)\n",
				styleOK.Render("success"), st.LastSyncTime.Local().Format("2006-01-02 15:04:05"),
				st.SyncedCount, st.SkippedCount)
		case status.StateError:
			fmt.Printf("last sync: %s at %s (%d error(s))\n",
				styleError.Render("error"), st.LastSyncTime.Local().Format("2006-01-02 15:04:05"),
				st.ErrorCount)
			if st.LastSyncError != "" {
				fmt.Printf("  %s\n", styleError.Render(st.LastSyncError))
			}
		}
		return nil
	},
}
