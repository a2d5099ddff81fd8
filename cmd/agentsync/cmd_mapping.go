package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/paths"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage local/remote path mappings",
}

var (
	mappingAddName      string
	mappingAddModule    string
	mappingAddLocal     string
	mappingAddRemote    string
	mappingAddPattern   bool
	mappingAddDirectory bool
	mappingAddRecursive bool
	mappingAddDisabled  bool
)

var mappingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a path mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := mapping.ParseModule(mappingAddModule)
		if err != nil {
			return err
		}
		if mappingAddLocal == "" || mappingAddRemote == "" {
			return fmt.Errorf("--local and --remote are required")
		}
		store := mapping.NewStore(paths.MappingsFile())
		m, err := store.Add(mapping.FileMapping{
			Name:        mappingAddName,
			Module:      module,
			LocalPath:   mappingAddLocal,
			RemotePath:  mappingAddRemote,
			Enabled:     !mappingAddDisabled,
			IsPattern:   mappingAddPattern,
			IsDirectory: mappingAddDirectory,
			Recursive:   mappingAddRecursive,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added mapping %s (%s)\n", m.Name, m.ID)
		return nil
	},
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		mappings, err := mapping.NewStore(paths.MappingsFile()).Load()
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			fmt.Println("No mappings. Run 'agentsync mapping reset' to seed defaults.")
			return nil
		}
		for _, m := range mappings {
			state := "enabled"
			if !m.Enabled {
				state = "disabled"
			}
			kind := "file"
			switch {
			case m.IsPattern:
				kind = "pattern"
			case m.IsDirectory:
				kind = "directory"
			}
			fmt.Printf("%s  [%s] %s (%s, %s)\n", m.ID, m.Module, m.Name, kind, state)
			fmt.Printf("    %s -> %s\n", m.LocalPath, m.RemotePath)
		}
		return nil
	},
}

var mappingEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapping.NewStore(paths.MappingsFile()).SetEnabled(args[0], true)
	},
}

var mappingDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a mapping (excluded from resolution entirely)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapping.NewStore(paths.MappingsFile()).SetEnabled(args[0], false)
	},
}

var mappingRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapping.NewStore(paths.MappingsFile()).Remove(args[0])
	},
}

var mappingResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace all mappings with the default seed set",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mapping.NewStore(paths.MappingsFile()).Reset(); err != nil {
			return err
		}
		fmt.Println("Mappings reset to defaults.")
		return nil
	},
}

func init() {
	mappingAddCmd.Flags().StringVar(&mappingAddName, "name", "", "display name")
	mappingAddCmd.Flags().StringVar(&mappingAddModule, "module", "claude", "module tag (opencode, claude, codex)")
	mappingAddCmd.Flags().StringVar(&mappingAddLocal, "local", "", "local path (supports %VAR% templates)")
	mappingAddCmd.Flags().StringVar(&mappingAddRemote, "remote", "", "remote path (~ left for the remote shell)")
	mappingAddCmd.Flags().BoolVar(&mappingAddPattern, "pattern", false, "treat local path as a glob")
	mappingAddCmd.Flags().BoolVar(&mappingAddDirectory, "directory", false, "treat local path as a directory")
	mappingAddCmd.Flags().BoolVar(&mappingAddRecursive, "recursive", false, "recurse into subdirectories")
	mappingAddCmd.Flags().BoolVar(&mappingAddDisabled, "disabled", false, "create disabled")

	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingListCmd)
	mappingCmd.AddCommand(mappingEnableCmd)
	mappingCmd.AddCommand(mappingDisableCmd)
	mappingCmd.AddCommand(mappingRemoveCmd)
	mappingCmd.AddCommand(mappingResetCmd)
}
