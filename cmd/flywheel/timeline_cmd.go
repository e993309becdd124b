package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
)

func timelineCmd() *cobra.Command {
	var since, until string
	cmd := &cobra.Command{
		Use:   "timeline <entity>",
		Short: "Print an entity's suggestion score history within a time window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(args[0], since, until)
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "RFC3339 timestamp (default: 30 days ago)")
	cmd.Flags().StringVar(&until, "until", "", "RFC3339 timestamp (default: now)")
	return cmd
}

func runTimeline(entityName, since, until string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	untilT := time.Now()
	if until != "" {
		untilT, err = time.Parse(time.RFC3339, until)
		if err != nil {
			return fmt.Errorf("parse --until: %w", err)
		}
	}
	sinceT := untilT.AddDate(0, 0, -30)
	if since != "" {
		sinceT, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
	}

	events, err := a.db.ScoreTimeline(entityName, sinceT.UnixMilli(), untilT.UnixMilli())
	if err != nil {
		return fmt.Errorf("load timeline for %s: %w", entityName, err)
	}
	if len(events) == 0 {
		fmt.Printf("no suggestion events for %s between %s and %s\n", entityName, sinceT.Format(time.RFC3339), untilT.Format(time.RFC3339))
		return nil
	}

	fmt.Printf("%stimeline%s %s\n", cli.Bold, cli.Reset, entityName)
	for _, ev := range events {
		fmt.Printf("  %s  score=%.1f (threshold %.1f)\n", time.UnixMilli(ev.TimestampMs).Format(time.RFC3339), ev.FinalScore, ev.Threshold)
	}
	return nil
}
