package game

import (
	"sync"
	"time"
)

// FrameHandle is a pending frame callback. Cancel is safe to call more than once.
type FrameHandle interface {
	Cancel()
}

// FrameScheduler runs fn once on the next frame. The engine re-arms it from
// inside the callback for as long as the match is playing.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameHandle
}

// TickerScheduler fires frames on wall-clock time at a fixed rate.
type TickerScheduler struct {
	interval time.Duration
}

// NewTickerScheduler creates a scheduler firing frameRate frames per second.
func NewTickerScheduler(frameRate int) *TickerScheduler {
	if frameRate < 1 {
		frameRate = DefaultFrameRate
	}
	return &TickerScheduler{interval: time.Second / time.Duration(frameRate)}
}

func (s *TickerScheduler) RequestFrame(fn func()) FrameHandle {
	return &timerHandle{t: time.AfterFunc(s.interval, fn)}
}

type timerHandle struct {
	t *time.Timer
}

func (h *timerHandle) Cancel() {
	h.t.Stop()
}

// ManualScheduler queues frames until Advance is called. It drives the engine
// deterministically in tests and headless replays.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualFrame
}

type manualFrame struct {
	fn        func()
	cancelled bool
}

func (f *manualFrame) Cancel() {
	f.cancelled = true
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) RequestFrame(fn func()) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &manualFrame{fn: fn}
	s.pending = append(s.pending, f)
	return &manualHandle{s: s, f: f}
}

type manualHandle struct {
	s *ManualScheduler
	f *manualFrame
}

func (h *manualHandle) Cancel() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.f.Cancel()
}

// Pending returns the number of frames armed and not cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, f := range s.pending {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// Advance runs up to n frames and returns how many ran.
func (s *ManualScheduler) Advance(n int) int {
	ran := 0
	for ran < n {
		s.mu.Lock()
		var next *manualFrame
		for len(s.pending) > 0 && next == nil {
			f := s.pending[0]
			s.pending = s.pending[1:]
			if !f.cancelled {
				next = f
			}
		}
		s.mu.Unlock()

		if next == nil {
			return ran
		}
		next.fn()
		ran++
	}
	return ran
}
