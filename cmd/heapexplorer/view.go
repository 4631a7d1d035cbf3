package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/heapkit/heap"
)

// View renders the dashboard: segment bars on top, the statistics block
// and workload status below.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.s == nil || m.s.h == nil {
		return ""
	}

	header := headerStyle.Render(
		fmt.Sprintf("heapexplorer - %s backend", m.s.h.Config().Backend))

	segments := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		paneTitleStyle.Render("Segments"),
		m.renderSegments()))

	stats := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		paneTitleStyle.Render("Counters"),
		m.renderStats()))

	status := statusStyle.Render(m.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, header, segments, stats, status)
}

// renderSegments draws one occupancy bar per segment.
func (m Model) renderSegments() string {
	h := m.s.h
	cfg := h.Config()
	const barWidth = 40

	var rows []string
	for i := 0; i < cfg.MaxSegments; i++ {
		if !h.IsHeapRef(heap.Ref(i) * cfg.SegmentSize) {
			rows = append(rows, detachedStyle.Render(
				fmt.Sprintf("seg %2d  %s  detached", i, strings.Repeat("·", barWidth))))
			continue
		}
		occupied := h.SegmentOccupancy(i)
		fill := int(uint64(occupied) * barWidth / uint64(cfg.SegmentSize))
		pct := 100 * uint64(occupied) / uint64(cfg.SegmentSize)

		style := barFillStyle
		if pct >= 85 {
			style = barHotStyle
		}
		bar := style.Render(strings.Repeat("█", fill)) +
			barEmptyStyle.Render(strings.Repeat("░", barWidth-fill))
		rows = append(rows, fmt.Sprintf("seg %2d  %s  %3d%%  %6d B", i, bar, pct, occupied))
	}
	return strings.Join(rows, "\n")
}

// renderStats shows the live counter block plus the workload view of it.
func (m Model) renderStats() string {
	h := m.s.h
	stats := h.StatsSnapshot()

	rows := []string{
		fmt.Sprintf("live blocks     %8d", h.AllocatedBlocks()),
		fmt.Sprintf("live bytes      %8d / %d", h.BlocksSize(), stats.HeapSize),
		fmt.Sprintf("soft limit      %8d", h.HeapLimit()),
		fmt.Sprintf("peak bytes      %8d", stats.PeakAllocatedBytes),
		fmt.Sprintf("allocs / frees  %8d / %d", stats.AllocCount, stats.FreeCount),
		fmt.Sprintf("gc passes       %8d low, %d high", m.s.gcLow, m.s.gcHigh),
		fmt.Sprintf("alloc failures  %8d", m.s.failures),
		fmt.Sprintf("segment groups  %8d", stats.SegmentAllocations),
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderStatus() string {
	state := "running"
	if m.paused {
		state = "paused"
	}
	return fmt.Sprintf("[%s]  space: pause/resume   r: reset   q: quit", state)
}
