package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap"
)

var (
	// Global flags
	verbose bool
	jsonOut bool

	// Heap configuration flags, shared by every subcommand.
	backendName string
	areaSize    uint32
	segmentSize uint32
	maxSegments int
	limitStep   uint64
)

// printer renders byte counts with digit grouping in human output.
var printer = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect the heapkit allocator",
	Long: `heapctl drives the heapkit allocator core with synthetic workloads and
reports its configuration and statistics. It exists to compare backends
and policies without embedding the engine runtime.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&backendName, "backend", "static", "Backend: static, segmented, dynamic-emulation, system")
	rootCmd.PersistentFlags().
		Uint32Var(&areaSize, "area-size", heap.DefaultConfig.AreaSize, "Heap area size in bytes")
	rootCmd.PersistentFlags().
		Uint32Var(&segmentSize, "segment-size", heap.DefaultConfig.SegmentSize, "Segment size in bytes")
	rootCmd.PersistentFlags().
		IntVar(&maxSegments, "max-segments", heap.DefaultConfig.MaxSegments, "Maximum segment count")
	rootCmd.PersistentFlags().
		Uint64Var(&limitStep, "limit-step", heap.DefaultConfig.DesiredLimit, "Soft limit step in bytes")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig assembles a heap.Config from the persistent flags.
func buildConfig() (heap.Config, error) {
	cfg := heap.DefaultConfig
	switch backendName {
	case "static":
		cfg.Backend = heap.BackendStatic
	case "segmented":
		cfg.Backend = heap.BackendSegmented
	case "dynamic-emulation":
		cfg.Backend = heap.BackendDynamicEmulation
	case "system":
		cfg.Backend = heap.BackendSystem
	default:
		return cfg, fmt.Errorf("unknown backend %q", backendName)
	}
	cfg.AreaSize = areaSize
	cfg.SegmentSize = segmentSize
	cfg.MaxSegments = maxSegments
	cfg.DesiredLimit = limitStep
	return cfg, nil
}

// printVerbose prints a message only in verbose mode.
func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as indented JSON.
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
