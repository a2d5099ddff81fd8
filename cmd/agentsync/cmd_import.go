package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/commands"
	"github.com/agentsync/agentsync/internal/dedup"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/paths"
	"github.com/agentsync/agentsync/internal/servers"
)

var (
	importFrom   string
	importModule string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import MCP servers from a project .mcp.json file",
	Long:  "Scan a project's .mcp.json, detect secrets, check for duplicates against your managed servers, and import.",
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := mapping.ParseModule(importModule)
		if err != nil {
			return err
		}

		store := servers.NewStore(paths.ServersFile())
		plan, err := commands.PrepareMCPImport(store, importFrom, module)
		if err != nil {
			return err
		}

		fmt.Printf("Found %d MCP server(s) in %s:\n", len(plan.New), plan.SourcePath)
		for _, srv := range plan.New {
			fmt.Printf("  - %s\n", srv.Name)
		}
		fmt.Println()

		// Secret gate.
		secretsReplaced := 0
		if len(plan.Secrets) > 0 {
			fmt.Printf("Detected %d secret(s):\n", len(plan.Secrets))
			for _, s := range plan.Secrets {
				fmt.Printf("  - %s.env.%s = %s (%s)\n", s.ServerName, s.EnvKey, s.Mask(), s.Reason)
			}
			fmt.Println()

			var replace bool
			err := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Replace detected secrets with ${ENV_VAR} references?").
						Description("Recommended: keeps secrets out of your managed config").
						Value(&replace),
				),
			).Run()
			if err != nil {
				return err
			}
			if replace {
				secretsReplaced = plan.ReplaceSecrets()
				fmt.Printf("Replaced %d secret(s) with env var references.\n\n", secretsReplaced)
			}
		}

		resolution := dedup.KeepAll
		if len(plan.Duplicates) > 0 {
			fmt.Printf("%d fingerprint group(s) collide with existing or sibling servers:\n", len(plan.Duplicates))
			for fp, group := range plan.Duplicates {
				fmt.Printf("  %s:\n", fp)
				for _, e := range group {
					fmt.Printf("    - %s\n", e.Name)
				}
			}
			fmt.Println()

			err := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[dedup.Resolution]().
						Title("Duplicates detected. How do you want to proceed?").
						Options(
							huh.NewOption("Remove duplicates (keep the oldest of each group)", dedup.RemoveDuplicates),
							huh.NewOption("Keep everything", dedup.KeepAll),
							huh.NewOption("Cancel import", dedup.Cancel),
						).
						Value(&resolution),
				),
			).Run()
			if err != nil {
				return err
			}
		}

		result, err := commands.ApplyMCPImport(store, plan, resolution)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println("Import cancelled.")
			return nil
		}

		imported := len(result.Imported) - len(result.Removed)
		fmt.Printf("Imported %d server(s)", imported)
		if len(result.Removed) > 0 {
			fmt.Printf(" (%d duplicate(s) removed)", len(result.Removed))
		}
		if secretsReplaced > 0 {
			fmt.Printf(", %d secret(s) templated", secretsReplaced)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", ".mcp.json", "path to the .mcp.json to import")
	importCmd.Flags().StringVar(&importModule, "module", "claude", "module tag for the imported servers")
}
