package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/config"
	"github.com/flywheel-dev/flywheel/internal/store"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Scaffold a vault for Flywheel: config, data dir, and state store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vault := "."
			if len(args) == 1 {
				vault = args[0]
			}
			return runInit(vault)
		},
	}
}

func runInit(vault string) error {
	abs, err := filepath.Abs(vault)
	if err != nil {
		return fmt.Errorf("resolve vault path: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	if err := os.MkdirAll(filepath.Join(abs, ".flywheel"), 0o755); err != nil {
		return fmt.Errorf("create .flywheel: %w", err)
	}

	var lines []string
	if _, err := os.Stat(config.ConfigFilePath(abs)); os.IsNotExist(err) {
		if err := config.GenerateConfig(abs); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		lines = append(lines, "wrote "+config.ConfigFilePath(abs))
	} else {
		lines = append(lines, "config already exists, left in place")
	}

	db, err := store.Open(abs)
	if err != nil {
		return fmt.Errorf("create state store: %w", err)
	}
	defer db.Close()

	lines = append(lines, fmt.Sprintf("state store at schema v%d", db.SchemaVersion()))
	lines = append(lines, "vault: "+cli.ShortenHome(abs))

	cli.Box(lines)
	fmt.Printf("%sFlywheel initialized%s — run `flywheel index` next\n", cli.Bold, cli.Reset)
	return nil
}
