package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
)

func layersCmd() *cobra.Command {
	var bucket string
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Print how much each scoring layer has contributed over time, bucketed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayers(bucket)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "1d", "bucket width: a Go duration (1h, 1d, 7d)")
	return cmd
}

func runLayers(bucket string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := parseBucketWidth(bucket)
	if err != nil {
		return fmt.Errorf("parse --bucket: %w", err)
	}

	buckets, err := a.db.LayerContributionTimeseries(d.Milliseconds())
	if err != nil {
		return fmt.Errorf("load layer contribution timeseries: %w", err)
	}
	if len(buckets) == 0 {
		fmt.Println("no suggestion events recorded yet")
		return nil
	}

	fmt.Printf("%slayer contribution%s (bucket %s)\n", cli.Bold, cli.Reset, bucket)
	for _, b := range buckets {
		layers := make([]string, 0, len(b.AvgByLayer))
		for layer := range b.AvgByLayer {
			layers = append(layers, layer)
		}
		sort.Strings(layers)
		fmt.Printf("  %s\n", time.UnixMilli(b.BucketStartMs).Format(time.RFC3339))
		for _, layer := range layers {
			fmt.Printf("    %-20s %.3f\n", layer, b.AvgByLayer[layer])
		}
	}
	return nil
}

// parseBucketWidth accepts "1d"/"7d" in addition to whatever
// time.ParseDuration already understands, since suggestion activity is
// naturally bucketed in days, not just hours/minutes/seconds.
func parseBucketWidth(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
