package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/commands"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/paths"
	"github.com/agentsync/agentsync/internal/servers"
	"github.com/agentsync/agentsync/internal/skills"
	"github.com/agentsync/agentsync/internal/status"
)

var version = "0.3.1"

var rootCmd = &cobra.Command{
	Use:   "agentsync",
	Short: "Mirror AI assistant configuration into WSL or SSH environments",
	Long:  "agentsync keeps provider profiles, MCP servers, and skills for AI coding CLIs in sync between the host OS and a secondary execution environment (a WSL distro or a remote SSH host).",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show status
		return statusCmd.RunE(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentsync %s\n", version)
	},
}

// newRunner wires the operation layer over the standard store locations.
func newRunner() *commands.Runner {
	return &commands.Runner{
		ConfigPath: paths.ConfigFile(),
		Mappings:   mapping.NewStore(paths.MappingsFile()),
		Servers:    servers.NewStore(paths.ServersFile()),
		Skills:     skills.NewStore(paths.SkillsFile()),
		SkillsDir:  paths.SkillsDir(),
		Status:     status.NewStore(paths.StatusFile()),
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
