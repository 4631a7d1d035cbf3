package main

import (
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap"
)

// opsPerTick is how much workload advances between frames.
const opsPerTick = 250

// tickMsg drives the workload between renders.
type tickMsg time.Time

// block is one live allocation of the synthetic workload.
type block struct {
	ref  heap.Ref
	size int
}

// state is the mutable allocator-plus-workload side of the app. It lives
// behind a pointer so the GC callback and the copied bubbletea models all
// see the same heap.
type state struct {
	h    *heap.Heap
	cfg  heap.Config
	rng  *rand.Rand
	live []block

	gcLow    int
	gcHigh   int
	failures int
}

// Model is the bubbletea model; display-only fields live by value.
type Model struct {
	s      *state
	paused bool
	width  int
	height int
	err    error
}

// NewModel creates a segmented heap sized so the display shows growth and
// reclamation within a few seconds of churn.
func NewModel() (Model, error) {
	cfg := heap.DefaultConfig
	cfg.Backend = heap.BackendSegmented
	cfg.SegmentSize = 16 * 1024
	cfg.MaxSegments = 16
	cfg.DesiredLimit = 16 * 1024

	s := &state{cfg: cfg, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if err := s.resetHeap(); err != nil {
		return Model{}, err
	}
	return Model{s: s}, nil
}

func (s *state) resetHeap() error {
	if s.h != nil {
		s.drainLive()
		_ = s.h.Close()
	}
	h, err := heap.New(s.cfg)
	if err != nil {
		return err
	}
	s.h = h
	s.live = nil
	s.gcLow = 0
	s.gcHigh = 0
	s.failures = 0
	h.SetGCCallback(func(sev heap.Severity) {
		if sev == heap.SeverityHigh {
			s.gcHigh++
		} else {
			s.gcLow++
		}
		// Behave like a collector: release a third of the live blocks.
		s.reclaim(len(s.live) / 3)
	})
	return nil
}

func (s *state) drainLive() {
	for _, b := range s.live {
		s.h.Free(b.ref, b.size)
	}
	s.live = nil
}

// reclaim frees n random live blocks.
func (s *state) reclaim(n int) {
	for i := 0; i < n && len(s.live) > 0; i++ {
		victim := s.rng.Intn(len(s.live))
		s.h.Free(s.live[victim].ref, s.live[victim].size)
		s.live = append(s.live[:victim], s.live[victim+1:]...)
	}
}

// step advances the workload by one operation.
func (s *state) step() {
	if len(s.live) == 0 || s.rng.Intn(100) < 62 {
		size := 8 + s.rng.Intn(480)
		ref, buf := s.h.TryAlloc(size)
		if buf == nil {
			s.failures++
			s.reclaim(1 + len(s.live)/4)
			return
		}
		s.live = append(s.live, block{ref: ref, size: size})
	} else {
		victim := s.rng.Intn(len(s.live))
		s.h.Free(s.live[victim].ref, s.live[victim].size)
		s.live = append(s.live[:victim], s.live[victim+1:]...)
	}
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.s.drainLive()
			_ = m.s.h.Close()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			return m, nil
		case "r":
			if err := m.s.resetHeap(); err != nil {
				m.err = err
			}
			return m, nil
		}

	case tickMsg:
		if !m.paused && m.err == nil {
			for i := 0; i < opsPerTick; i++ {
				m.s.step()
			}
		}
		return m, tick()
	}
	return m, nil
}
