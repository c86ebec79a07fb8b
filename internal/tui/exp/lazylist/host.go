package lazylist

import "time"

// Host is the environment the list is mounted in. Scroll positions and
// heights share one unit (lines in a terminal, pixels in a browser).
type Host interface {
	// ScrollOffset is the current scroll position of the scroll container.
	ScrollOffset() float64
	// ViewportHeight is the visible height of the scroll container.
	ViewportHeight() float64
	// ListOffset is the distance from the top of the scrollable content to
	// the top of the list.
	ListOffset() float64
	// ScrollBy moves the scroll position by dy. The host may clamp it.
	ScrollBy(dy float64)
	// Invalidate asks the host to call Render and Commit again.
	Invalidate()
}

// Token identifies a scheduled task. Schedulers never return 0.
type Token uint64

// Scheduler runs deferred work on the host's event loop. Callbacks must run
// on the same goroutine that drives the controller.
type Scheduler interface {
	// RequestFrame runs fn before the next frame is drawn.
	RequestFrame(fn func()) Token
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func()) Token
	// Cancel drops a pending task. Cancelling a finished task is a no-op.
	Cancel(Token)
}

// IdleScheduler is implemented by schedulers that can run low priority work
// when the host is idle.
type IdleScheduler interface {
	Scheduler
	RequestIdle(fn func()) Token
}
