package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/entitygraph"
	"github.com/flywheel-dev/flywheel/internal/store"
)

func snapshotCmd() *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute and persist a point-in-time entity graph summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if diff {
				return runSnapshotDiff()
			}
			return runSnapshot()
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "print the delta between the two most recent snapshots instead of taking a new one")
	return cmd
}

func runSnapshot() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	g := entitygraph.NewDB(a.db.Conn())
	stats, err := g.ComputeStats()
	if err != nil {
		return fmt.Errorf("compute graph stats: %w", err)
	}

	hubs := make([]string, 0, len(stats.TopHubs))
	for _, h := range stats.TopHubs {
		hubs = append(hubs, h.Ref)
	}

	snap := store.GraphSnapshot{
		TakenAt:            time.Now().UnixMilli(),
		AvgDegree:          stats.AvgDegree,
		MaxDegree:          stats.MaxDegree,
		ClusterCount:       stats.ClusterCount,
		LargestClusterSize: stats.LargestClusterSize,
		TopHubs:            hubs,
	}
	if err := a.db.RecordSnapshot(snap); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}

	fmt.Printf("%sgraph snapshot%s\n", cli.Bold, cli.Reset)
	fmt.Printf("  avg degree:       %.2f\n", snap.AvgDegree)
	fmt.Printf("  max degree:       %d\n", snap.MaxDegree)
	fmt.Printf("  clusters:         %d (largest %d)\n", snap.ClusterCount, snap.LargestClusterSize)
	fmt.Printf("  top hubs:         %v\n", snap.TopHubs)
	return nil
}

func runSnapshotDiff() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	prev, latest, ok, err := a.db.SnapshotDiff()
	if err != nil {
		return fmt.Errorf("load snapshot diff: %w", err)
	}
	if !ok {
		fmt.Println("fewer than two snapshots recorded; run `flywheel snapshot` again later")
		return nil
	}

	fmt.Printf("%ssnapshot diff%s (%s -> %s)\n", cli.Bold, cli.Reset,
		time.UnixMilli(prev.TakenAt).Format(time.RFC3339), time.UnixMilli(latest.TakenAt).Format(time.RFC3339))
	fmt.Printf("  avg degree:    %.2f -> %.2f\n", prev.AvgDegree, latest.AvgDegree)
	fmt.Printf("  max degree:    %d -> %d\n", prev.MaxDegree, latest.MaxDegree)
	fmt.Printf("  clusters:      %d -> %d\n", prev.ClusterCount, latest.ClusterCount)
	fmt.Printf("  largest cluster: %d -> %d\n", prev.LargestClusterSize, latest.LargestClusterSize)
	return nil
}
