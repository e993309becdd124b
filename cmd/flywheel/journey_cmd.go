package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
)

func journeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journey <entity>",
		Short: "Print every suggestion event recorded for an entity, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJourney(args[0])
		},
	}
}

func runJourney(entityName string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.db.EntityJourney(entityName)
	if err != nil {
		return fmt.Errorf("load journey for %s: %w", entityName, err)
	}
	if len(events) == 0 {
		fmt.Printf("no suggestion events recorded for %s\n", entityName)
		return nil
	}

	fmt.Printf("%sjourney%s %s (%d event%s)\n", cli.Bold, cli.Reset, entityName, len(events), plural(len(events)))
	for _, ev := range events {
		status := "rejected"
		color := cli.Red
		if ev.Passed {
			status = "passed"
			color = cli.Green
		}
		fmt.Printf("  %s  %s%-8s%s score=%.1f threshold=%.1f note=%s context=%s\n",
			time.UnixMilli(ev.TimestampMs).Format(time.RFC3339), color, status, cli.Reset,
			ev.FinalScore, ev.Threshold, ev.NotePath, ev.ContextTag)
	}
	return nil
}
