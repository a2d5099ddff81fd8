package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/internal/config"
	"github.com/agentsync/agentsync/internal/environ"
	"github.com/agentsync/agentsync/internal/paths"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Detect and select the target environment",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate WSL distros and configured SSH connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}

		det := environ.DetectWSL(cmd.Context())
		if det.Available {
			fmt.Println("wsl:")
			for _, id := range det.Identities {
				marker := " "
				if cfg.Environment.Kind == environ.KindWSL && cfg.Environment.Identity == id {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, id)
			}
		} else {
			fmt.Println("wsl: not available")
		}

		if len(cfg.SSH) == 0 {
			fmt.Println("ssh: no connections configured")
			return nil
		}
		fmt.Println("ssh:")
		for _, conn := range cfg.SSH {
			marker := " "
			if cfg.Environment.Kind == environ.KindSSH && cfg.Environment.Identity == conn.Name {
				marker = "*"
			}
			fmt.Printf("  %s %s (%s@%s)\n", marker, conn.Name, conn.User, conn.Host)
		}
		return nil
	},
}

var envUseCmd = &cobra.Command{
	Use:   "use <wsl|ssh> <identity>",
	Short: "Select the environment sync passes target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := environ.ParseKind(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		if kind == environ.KindSSH {
			if _, ok := cfg.SSHByName(args[1]); !ok {
				return fmt.Errorf("no SSH connection named %q; add it to %s first", args[1], paths.ConfigFile())
			}
		}
		cfg.Environment = environ.Descriptor{Kind: kind, Identity: args[1]}
		if err := config.Save(paths.ConfigFile(), cfg); err != nil {
			return err
		}
		fmt.Printf("Now targeting %s\n", cfg.Environment)
		return nil
	},
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the selected environment for availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(paths.ConfigFile())
		if err != nil {
			return err
		}
		var env environ.Environment
		switch cfg.Environment.Kind {
		case environ.KindWSL:
			env = environ.NewWSL(cfg.Environment.Identity)
		case environ.KindSSH:
			conn, ok := cfg.SSHByName(cfg.Environment.Identity)
			if !ok {
				return fmt.Errorf("no SSH connection named %q in config", cfg.Environment.Identity)
			}
			client, err := environ.NewSSHClient(conn)
			if err != nil {
				return err
			}
			defer client.Close()
			env = client
		default:
			return fmt.Errorf("no environment configured; run 'agentsync env use'")
		}
		if err := env.CheckAvailability(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s is reachable\n", env.Descriptor())
		return nil
	},
}

func init() {
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envUseCmd)
	envCmd.AddCommand(envCheckCmd)
}
