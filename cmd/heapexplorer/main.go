package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			printHelp()
			return
		case "--version", "-v":
			fmt.Printf("heapexplorer %s\n", version)
			return
		}
	}

	m, err := NewModel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`heapexplorer - watch the heapkit allocator under load

A synthetic workload churns a segmented heap while the display shows
per-segment occupancy and the allocator counters live.

Usage:
  heapexplorer [flags]

Flags:
  -h, --help      Show this help
  -v, --version   Show version

Keys:
  space   pause / resume the workload
  r       reset the heap and restart
  q       quit`)
}
