package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/commands"
	"github.com/agentsync/agentsync/internal/dedup"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/paths"
	"github.com/agentsync/agentsync/internal/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage imported skills",
}

var (
	skillImportFrom   string
	skillImportModule string
)

var skillImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import skills from a directory",
	Long:  "Scan a directory for SKILL.md skill directories and loose command .md files, check for duplicates, and copy them into the managed skill tree.",
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := mapping.ParseModule(skillImportModule)
		if err != nil {
			return err
		}

		store := skills.NewStore(paths.SkillsFile())
		plan, err := commands.PrepareSkillImport(store, skillImportFrom, module)
		if err != nil {
			return err
		}

		fmt.Printf("Found %d skill(s) in %s:\n", len(plan.Found), plan.SourceDir)
		for _, d := range plan.Found {
			kind := "command"
			if d.IsDir {
				kind = "skill"
			}
			fmt.Printf("  - %s (%s)\n", d.Name, kind)
		}
		fmt.Println()

		resolution := dedup.KeepAll
		if len(plan.Duplicates) > 0 {
			fmt.Printf("%d duplicate group(s) detected.\n\n", len(plan.Duplicates))
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

		result, err := commands.ApplySkillImport(store, plan, paths.SkillsDir(), resolution)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println("Import cancelled.")
			return nil
		}

		fmt.Printf("Imported %d skill(s)", len(result.Imported)-len(result.Removed))
		if len(result.Removed) > 0 {
			fmt.Printf(" (%d duplicate(s) removed)", len(result.Removed))
		}
		fmt.Println()
		return nil
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := skills.NewStore(paths.SkillsFile()).Load()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No skills imported.")
			return nil
		}
		for _, sk := range list {
			kind := "command"
			if sk.IsDir() {
				kind = "skill"
			}
			fmt.Printf("%s  [%s] %s (%s, imported %s)\n", sk.ID, sk.Module, sk.Name, kind, sk.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	skillImportCmd.Flags().StringVar(&skillImportFrom, "from", ".", "directory to scan for skills")
	skillImportCmd.Flags().StringVar(&skillImportModule, "module", "claude", "module tag for the imported skills")

	skillCmd.AddCommand(skillImportCmd)
	skillCmd.AddCommand(skillListCmd)
}
