package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/orchestrator"
)

func addToSectionCmd() *cobra.Command {
	var section, content, format, position string
	var commit bool

	cmd := &cobra.Command{
		Use:   "add-to-section <file>",
		Short: "Insert content under a Markdown section heading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddToSection(args[0], section, content, format, position, commit)
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "heading text of the target section (required)")
	cmd.Flags().StringVar(&content, "content", "", "text to insert (required)")
	cmd.Flags().StringVar(&format, "format", "plain", "plain|bullet|task|numbered|timestamp-bullet")
	cmd.Flags().StringVar(&position, "position", "append", "append|prepend")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the change via the vault's git repository")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

// runAddToSection drives the mutation orchestrator's AddToSection operation,
// the same read -> validate -> transform -> write -> record -> commit
// lifecycle every mutating CLI command goes through.
func runAddToSection(notePath, section, content, format, position string, commit bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	relPath, _, err := resolveNotePath(a.vault, notePath)
	if err != nil {
		return err
	}

	engine := orchestrator.New(a.db, a.vcs, orchestrator.Clock{
		NowMs:   nowMs,
		NowHour: nowHourMinute,
	})

	result, err := engine.Run(orchestrator.Context{
		Vault:        a.vault,
		NotePath:     relPath,
		Commit:       commit,
		CommitPrefix: "[Flywheel]",
		Section:      section,
	}, orchestrator.Request{
		Kind:     orchestrator.AddToSection,
		Content:  content,
		Format:   format,
		Position: position,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%supdated%s %s\n", cli.Bold, cli.Reset, relPath)
	if result.Message != "" {
		fmt.Println("  " + result.Message)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  %swarning:%s %s\n", cli.Yellow, cli.Reset, w)
	}
	if result.GitError != "" {
		fmt.Printf("  %sgit error:%s %s\n", cli.Red, cli.Reset, result.GitError)
		a.Close()
		os.Exit(result.ExitCode)
	}
	return nil
}
