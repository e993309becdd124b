package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/contentsafety"
	"github.com/flywheel-dev/flywheel/internal/scorer"
	"github.com/flywheel-dev/flywheel/internal/store"
)

func suggestCmd() *cobra.Command {
	var strictness string
	var maxSuggestions int
	var showBreakdown bool

	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "Score a note's content against the entity index and print ranked suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(args[0], strictness, maxSuggestions, showBreakdown)
		},
	}
	cmd.Flags().StringVar(&strictness, "strictness", "conservative", "conservative|balanced|aggressive")
	cmd.Flags().IntVar(&maxSuggestions, "max", 3, "maximum suggestions to print")
	cmd.Flags().BoolVar(&showBreakdown, "breakdown", false, "print the per-layer score breakdown for each candidate")
	return cmd
}

// runSuggest scores notePath's content, prints the ranked suggestions, and
// persists every scored candidate — passed or not — as a SuggestionEvent
// per the journey/timeline observability queries.
func runSuggest(notePath, strictness string, maxSuggestions int, showBreakdown bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	relPath, abs, err := resolveNotePath(a.vault, notePath)
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

	tag := contextTag(relPath)
	nowMs := opts.NowMs
	for _, c := range result.AllScored {
		breakdown := make(map[string]float64, len(c.Breakdown))
		for layer, v := range c.Breakdown {
			breakdown[string(layer)] = v
		}
		_ = a.db.RecordSuggestionEvent(store.SuggestionEvent{
			TimestampMs: nowMs,
			NotePath:    relPath,
			EntityName:  c.Entity.CanonicalName,
			FinalScore:  c.FinalScore,
			Threshold:   result.Threshold,
			Passed:      c.Passed,
			Breakdown:   breakdown,
			Strictness:  string(opts.Strictness),
			ContextTag:  tag,
		})
	}

	if len(result.Suggestions) == 0 {
		fmt.Printf("no suggestions for %s (threshold %.1f)\n", relPath, result.Threshold)
		return nil
	}

	contentsafety.Check("suggestion suffix for "+relPath, result.Suffix)

	fmt.Printf("%s%s%s (threshold %.1f)\n", cli.Bold, relPath, cli.Reset, result.Threshold)
	for _, c := range result.Suggestions {
		fmt.Printf("  %s[[%s]]%s  score=%.1f\n", cli.Green, c.Entity.CanonicalName, cli.Reset, c.FinalScore)
		if showBreakdown {
			for layer, v := range c.Breakdown {
				if v != 0 {
					fmt.Printf("      %s: %s\n", layer, strconv.FormatFloat(v, 'f', 1, 64))
				}
			}
		}
	}
	if result.Suffix != "" {
		fmt.Printf("\n%s%s%s\n", cli.Dim, result.Suffix, cli.Reset)
	}
	return nil
}

// resolveNotePath accepts a path relative to the vault or the current
// directory and returns (vault-relative slash path, absolute path).
func resolveNotePath(vault, notePath string) (string, string, error) {
	abs := notePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(vault, notePath)
		if _, err := os.Stat(abs); err != nil {
			if cwdAbs, cerr := filepath.Abs(notePath); cerr == nil {
				abs = cwdAbs
			}
		}
	}
	rel, err := filepath.Rel(vault, abs)
	if err != nil {
		return "", "", fmt.Errorf("%s is not within the vault: %w", notePath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", "", fmt.Errorf("%s: not found", notePath)
	}
	return filepath.ToSlash(rel), abs, nil
}
