package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the resolved allocator configuration",
		Long: `The info command prints the allocator configuration the other
subcommands would run with, resolved from the persistent flags.

Example:
  heapctl info
  heapctl info --backend segmented --segment-size 65536 --max-segments 16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(infoPayload(cfg))
			}
			fmt.Print(cfg.Describe())
			return nil
		},
	}
}

func infoPayload(cfg heap.Config) map[string]any {
	return map[string]any{
		"backend":      cfg.Backend.String(),
		"alignment":    cfg.Alignment,
		"areaSize":     cfg.AreaSize,
		"segmentSize":  cfg.SegmentSize,
		"maxSegments":  cfg.MaxSegments,
		"desiredLimit": cfg.DesiredLimit,
	}
}
