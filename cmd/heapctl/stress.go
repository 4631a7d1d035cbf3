package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

var (
	stressOps     int
	stressMaxSize int
	stressBias    int
	stressSeed    int64
	stressRounds  int
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 1000000, "Operations per round")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 256, "Maximum block size in bytes")
	cmd.Flags().IntVar(&stressBias, "alloc-bias", 60, "Percentage of operations that allocate")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Workload seed")
	cmd.Flags().IntVar(&stressRounds, "rounds", 1, "Full init/churn/finalize rounds")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Hammer the allocator and report throughput",
		Long: `The stress command runs rounds of allocator churn against a fresh heap
per round and reports wall-clock throughput, allocation failures near
capacity, and the end-of-run statistics.

Example:
  heapctl stress --ops 2000000
  heapctl stress --backend dynamic-emulation --alloc-bias 70`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			var total workloadResult
			start := time.Now()
			var last heap.Stats
			for round := 0; round < stressRounds; round++ {
				h, err := heap.New(cfg)
				if err != nil {
					return err
				}
				res := runWorkload(h, stressOps, stressMaxSize, stressBias, stressSeed+int64(round))
				last = h.StatsSnapshot()
				if err := h.Close(); err != nil {
					return err
				}

				total.Ops += res.Ops
				total.Allocs += res.Allocs
				total.Frees += res.Frees
				total.Failures += res.Failures
				if res.PeakLive > total.PeakLive {
					total.PeakLive = res.PeakLive
				}
				printVerbose("round %d: %d allocs, %d failures\n", round, res.Allocs, res.Failures)
			}
			elapsed := time.Since(start)

			if jsonOut {
				return printJSON(map[string]any{
					"workload":  total,
					"elapsedMs": elapsed.Milliseconds(),
					"opsPerSec": float64(total.Ops) / elapsed.Seconds(),
					"stats":     last,
				})
			}

			printer.Printf("%d operations in %s (%.0f ops/s)\n",
				total.Ops, elapsed.Round(time.Millisecond), float64(total.Ops)/elapsed.Seconds())
			printer.Printf("allocs: %d  frees: %d  failures: %d  peak live: %d bytes\n",
				total.Allocs, total.Frees, total.Failures, total.PeakLive)
			printer.Printf("average alloc iterations: %.2f\n",
				safeDiv(last.AllocIterations, last.AllocCount))
			printer.Printf("skip-ahead rate: %.1f%%\n",
				100*safeDiv(last.SkipCount, last.SkipCount+last.NonskipCount))
			return nil
		},
	}
}

func safeDiv(a, b uint64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
