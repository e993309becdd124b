package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/entity"
	"github.com/flywheel-dev/flywheel/internal/linker"
	"github.com/flywheel-dev/flywheel/internal/safeio"
	"github.com/flywheel-dev/flywheel/internal/scorer"
)

func linkCmd() *cobra.Command {
	var strictness string
	var maxSuggestions int
	var commit bool

	cmd := &cobra.Command{
		Use:   "link <file>",
		Short: "Apply resolved aliases and auto-inserted wikilinks to a note in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(args[0], strictness, maxSuggestions, commit)
		},
	}
	cmd.Flags().StringVar(&strictness, "strictness", "conservative", "conservative|balanced|aggressive")
	cmd.Flags().IntVar(&maxSuggestions, "max", 3, "maximum auto-links to insert")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the change via the vault's git repository")
	return cmd
}

// runLink scores notePath, runs the Linker's alias-resolution and
// auto-link passes, and writes the result back atomically.
func runLink(notePath, strictness string, maxSuggestions int, commit bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	relPath, abs, err := resolveNotePath(a.vault, notePath)
	if err != nil {
		return err
	}
	verifiedAbs, err := safeio.ValidatePathSecure(a.vault, relPath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", relPath, err)
	}

	opts := scorer.DefaultOptions()
	opts.NotePath = relPath
	opts.MaxSuggestions = maxSuggestions
	opts.NowMs = time.Now().UnixMilli()
	switch scorer.Strictness(strictness) {
	case scorer.Conservative, scorer.Balanced, scorer.Aggressive:
		opts.Strictness = scorer.Strictness(strictness)
	default:
		return fmt.Errorf("unknown strictness %q", strictness)
	}

	result := scorer.Score(string(content), opts, a.scorerDeps())

	candidates := make([]entity.Entity, 0, len(result.Suggestions))
	for _, c := range result.Suggestions {
		candidates = append(candidates, c.Entity)
	}

	applied := linker.Apply(string(content), a.index, candidates)
	if applied.LinksAdded == 0 {
		fmt.Printf("no links applied to %s\n", relPath)
		return nil
	}

	if err := safeio.WriteAtomic(verifiedAbs, []byte(applied.Content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}

	fmt.Printf("%slinked%s %s (%d link%s)\n", cli.Bold, cli.Reset, relPath, applied.LinksAdded, plural(applied.LinksAdded))
	for _, name := range applied.LinkedEntities {
		fmt.Printf("  [[%s]]\n", name)
	}

	if commit {
		res := a.vcs.Commit(a.vault, relPath, "[Flywheel]")
		if !res.Success {
			return fmt.Errorf("commit %s: %s", relPath, res.Error)
		}
		fmt.Printf("%scommitted%s %s\n", cli.Bold, cli.Reset, res.Hash)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
