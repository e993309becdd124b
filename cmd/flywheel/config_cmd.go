package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the vault's engine configuration",
	}
	cmd.AddCommand(configShowCmd(), configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(config.ShowConfig())
			if w := config.ConfigWarning(); w != "" {
				fmt.Printf("%s%s%s\n", cli.Yellow, w, cli.Reset)
			}
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	var strictness, commitPrefix string
	var maxSuggestions int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update strictness, commit prefix, and max suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			vault := config.VaultPath()
			if vault == "" {
				return config.ErrNoVault
			}
			if strictness == "" {
				strictness = config.EngineStrictness()
			}
			if commitPrefix == "" {
				commitPrefix = config.CommitPrefix()
			}
			if maxSuggestions == 0 {
				maxSuggestions = config.MaxSuggestions()
			}
			if err := config.SetEngineConfig(vault, config.Strictness(strictness), commitPrefix, maxSuggestions); err != nil {
				return fmt.Errorf("update config: %w", err)
			}
			fmt.Printf("%supdated%s %s\n", cli.Bold, cli.Reset, config.ConfigFilePath(vault))
			return nil
		},
	}
	cmd.Flags().StringVar(&strictness, "strictness", "", "conservative|balanced|aggressive")
	cmd.Flags().StringVar(&commitPrefix, "commit-prefix", "", "prefix used on engine-authored commits")
	cmd.Flags().IntVar(&maxSuggestions, "max-suggestions", 0, "default suggestion cap")
	return cmd
}
