package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/config"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/paths"
	"github.com/agentsync/agentsync/internal/profiles"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage provider profiles",
}

var profileCreateModule string

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := mapping.ParseModule(profileCreateModule)
		if err != nil {
			return err
		}
		name := args[0]
		if _, err := profiles.Read(paths.ProfilesDir(), name); err == nil {
			return fmt.Errorf("profile %q already exists", name)
		}
		if err := profiles.Write(paths.ProfilesDir(), name, profiles.Profile{Module: module}); err != nil {
			return err
		}
		fmt.Printf("Created profile %s\n", name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		names, err := profiles.List(paths.ProfilesDir())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No profiles.")
			return nil
		}
		for _, name := range names {
			marker := " "
			if name == cfg.ActiveProfile {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Activate a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := profiles.Read(paths.ProfilesDir(), name); err != nil {
			return err
		}
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		cfg.ActiveProfile = name
		if err := config.Save(paths.ConfigFile(), cfg); err != nil {
			return err
		}
		fmt.Printf("Active profile: %s\n", name)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		if err := profiles.Delete(paths.ProfilesDir(), name); err != nil {
			return err
		}
		if cfg.ActiveProfile == name {
			cfg.ActiveProfile = ""
			if err := config.Save(paths.ConfigFile(), cfg); err != nil {
				return err
			}
		}
		fmt.Printf("Deleted profile %s\n", name)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profiles.Read(paths.ProfilesDir(), args[0])
		if err != nil {
			return err
		}
		data, err := profiles.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileCreateModule, "module", "claude", "module this profile targets")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileShowCmd)
}
