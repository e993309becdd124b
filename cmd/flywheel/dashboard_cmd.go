package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print a summary of entity coverage, the latest graph snapshot, and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

// runDashboard is dashboard_extended(): a pure read over persisted state —
// entity counts by category, the latest graph snapshot, and the most
// recent mutation hints. No scoring or graph computation happens here;
// `flywheel index`/`snapshot` are what produce the state this reads.
func runDashboard() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cli.Header("Flywheel — " + cli.ShortenHome(a.vault))

	cli.Section("entities")
	stats := a.index.Stats()
	total := 0
	for _, s := range stats {
		fmt.Printf("  %-14s %s\n", s.Category, cli.FormatNumber(s.Count))
		total += s.Count
	}
	fmt.Printf("  %-14s %s\n", "total", cli.FormatNumber(total))

	snap, ok, err := a.db.LatestSnapshot()
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	cli.Section("graph")
	if !ok {
		fmt.Println("  no snapshot recorded yet — run `flywheel snapshot`")
	} else {
		fmt.Printf("  taken:           %s\n", time.UnixMilli(snap.TakenAt).Format(time.RFC3339))
		fmt.Printf("  avg degree:      %.2f\n", snap.AvgDegree)
		fmt.Printf("  max degree:      %d\n", snap.MaxDegree)
		fmt.Printf("  clusters:        %d (largest %d)\n", snap.ClusterCount, snap.LargestClusterSize)
		if len(snap.TopHubs) > 0 {
			fmt.Printf("  top hubs:        %v\n", snap.TopHubs)
		}
	}

	hints, err := a.db.RecentMutationHints(10)
	if err != nil {
		return fmt.Errorf("load mutation hints: %w", err)
	}
	cli.Section("recent activity")
	if len(hints) == 0 {
		fmt.Println("  none recorded yet")
		cli.Footer()
		return nil
	}
	for _, h := range hints {
		fmt.Printf("  %s  %-18s %s\n", time.UnixMilli(h.Timestamp).Format(time.RFC3339), h.Operation, h.Path)
	}
	cli.Footer()
	return nil
}
