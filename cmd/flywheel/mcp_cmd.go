package main

import (
	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/mcpsurface"
)

var version = "dev"

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the suggest_links/apply_links/add_to_section tools over MCP (stdio)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}
}

func runMCP() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	mcpsurface.Version = version
	return mcpsurface.Serve(mcpsurface.Deps{
		Vault: a.vault,
		DB:    a.db,
		Index: a.index,
		Vcs:   a.vcs,
	})
}
