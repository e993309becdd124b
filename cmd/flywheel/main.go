// Command flywheel suggests and applies wikilinks across a local Markdown
// vault: build its entity index and recency/co-occurrence caches, score
// candidates for a note, and either print or apply the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/config"
	"github.com/flywheel-dev/flywheel/internal/ferrors"
)

func main() {
	root := &cobra.Command{
		Use:   "flywheel",
		Short: "Wikilink suggestion and auto-linking engine for a Markdown vault",
		Long: "Flywheel scores a note's content against a vault-wide entity index\n" +
			"and suggests or applies wikilinks, tracking recency, co-occurrence,\n" +
			"and feedback so suggestions improve as the vault grows.",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}

	root.PersistentFlags().StringVar(&config.VaultOverride, "vault", "", "path to the vault (default: nearest .flywheel/.obsidian ancestor)")

	root.AddCommand(
		initCmd(),
		indexCmd(),
		suggestCmd(),
		linkCmd(),
		addToSectionCmd(),
		journeyCmd(),
		timelineCmd(),
		dashboardCmd(),
		snapshotCmd(),
		layersCmd(),
		watchCmd(),
		mcpCmd(),
		configCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeForErr(err))
	}
}

// exitCodeForErr maps a top-level command error to the process exit code
// through ferrors.ExitCode: 2 for validation kinds, 5 for store errors, 4 for
// any other error. add-to-section exits with 3 itself when its mutation was
// written but the commit failed.
func exitCodeForErr(err error) int {
	return ferrors.ExitCode(err, false)
}
