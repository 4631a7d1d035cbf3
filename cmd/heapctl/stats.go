package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

var (
	statsOps     int
	statsMaxSize int
	statsSeed    int64
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsOps, "ops", 100000, "Operations to run before sampling")
	cmd.Flags().IntVar(&statsMaxSize, "max-size", 256, "Maximum block size in bytes")
	cmd.Flags().Int64Var(&statsSeed, "seed", 1, "Workload seed")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run a workload and show the allocator statistics",
		Long: `The stats command churns the configured heap with a deterministic
synthetic workload, then prints the statistics block: byte counters with
peaks, waste, and the free-list traversal counters.

Example:
  heapctl stats
  heapctl stats --backend segmented --ops 500000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			h, err := heap.New(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			printVerbose("running %d operations (seed %d)\n", statsOps, statsSeed)
			res := runWorkload(h, statsOps, statsMaxSize, 60, statsSeed)
			stats := h.StatsSnapshot()

			if jsonOut {
				return printJSON(map[string]any{
					"workload": res,
					"stats":    stats,
				})
			}

			printer.Printf("workload: %d allocs, %d frees, %d failures, peak live %d bytes\n",
				res.Allocs, res.Frees, res.Failures, res.PeakLive)
			printer.Println()
			printer.Print(stats.String())
			return nil
		},
	}
}
