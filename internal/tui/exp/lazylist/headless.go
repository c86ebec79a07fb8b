package lazylist

import (
	"slices"
	"time"
)

// HeadlessHost is a Host without a display. It is used to compute layouts
// outside a terminal and in tests.
type HeadlessHost struct {
	Offset float64
	Height float64
	Top    float64
	// MaxOffset bounds ScrollBy when set.
	MaxOffset func() float64

	invalidated bool
}

func (h *HeadlessHost) ScrollOffset() float64   { return h.Offset }
func (h *HeadlessHost) ViewportHeight() float64 { return h.Height }
func (h *HeadlessHost) ListOffset() float64     { return h.Top }
func (h *HeadlessHost) Invalidate()             { h.invalidated = true }

func (h *HeadlessHost) ScrollBy(dy float64) {
	h.Offset = max(0, h.Offset+dy)
	if h.MaxOffset != nil {
		h.Offset = min(h.Offset, max(0, h.MaxOffset()))
	}
}

// TakeInvalidated reports whether Invalidate was called since the last call
// and clears the flag.
func (h *HeadlessHost) TakeInvalidated() bool {
	v := h.invalidated
	h.invalidated = false
	return v
}

type manualTask struct {
	token Token
	due   time.Duration
	fn    func()
}

// ManualScheduler queues tasks until they are flushed. Time only advances
// through Advance, which makes debouncing deterministic.
type ManualScheduler struct {
	next  Token
	now   time.Duration
	tasks []manualTask
}

// FrameInterval is the delay of RequestFrame tasks.
const FrameInterval = 16 * time.Millisecond

func (s *ManualScheduler) RequestFrame(fn func()) Token {
	return s.After(FrameInterval, fn)
}

func (s *ManualScheduler) After(d time.Duration, fn func()) Token {
	s.next++
	s.tasks = append(s.tasks, manualTask{token: s.next, due: s.now + d, fn: fn})
	return s.next
}

func (s *ManualScheduler) Cancel(tok Token) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t manualTask) bool { return t.token == tok })
}

// Pending returns the number of queued tasks.
func (s *ManualScheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves time forward by d and runs every task that became due, in
// due order. Tasks scheduled while running are run too when they fall
// within the window. It returns the number of tasks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	until := s.now + d
	ran := 0
	for {
		idx := -1
		for i, t := range s.tasks {
			if t.due <= until && (idx < 0 || t.due < s.tasks[idx].due) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		t := s.tasks[idx]
		s.tasks = slices.Delete(s.tasks, idx, idx+1)
		s.now = max(s.now, t.due)
		t.fn()
		ran++
	}
	s.now = until
	return ran
}

// Flush runs tasks until none are left, advancing time as needed. It stops
// after limit tasks to guard against tasks that keep rescheduling.
func (s *ManualScheduler) Flush(limit int) int {
	ran := 0
	for len(s.tasks) > 0 && ran < limit {
		next := s.tasks[0].due
		for _, t := range s.tasks {
			next = min(next, t.due)
		}
		ran += s.Advance(max(0, next-s.now))
	}
	return ran
}
