package lazylist

import (
	"log/slog"
	"time"
)

const (
	DefaultAssumedItemHeight        = 200
	DefaultOffscreenToViewportRatio = 1.8
	DefaultScrollDebounce           = 50 * time.Millisecond
)

type confOptions struct {
	assumedItemHeight float64
	// negative disables the scroll to the initial item on mount
	initialItemIndex     int
	initialHeights       map[string]float64
	scrollDebounce       time.Duration
	offscreenRatio       float64
	onHeightUpdated      func(map[string]float64)
	onPositioningUpdated func(Snapshot)
	heightCacheLimit     int
	pruneHeights         bool
	logger               *slog.Logger
}

type Option func(*confOptions)

func defaultOptions() *confOptions {
	return &confOptions{
		assumedItemHeight: DefaultAssumedItemHeight,
		scrollDebounce:    DefaultScrollDebounce,
		offscreenRatio:    DefaultOffscreenToViewportRatio,
		logger:            slog.Default(),
	}
}

// WithAssumedItemHeight sets the height used for items that were never
// measured.
func WithAssumedItemHeight(h float64) Option {
	return func(o *confOptions) {
		if h > 0 {
			o.assumedItemHeight = h
		}
	}
}

// WithInitialItemIndex sets the item scrolled to the top of the viewport on
// mount and after an unrelated item sequence replaces the current one.
func WithInitialItemIndex(index int) Option {
	return func(o *confOptions) {
		o.initialItemIndex = index
	}
}

// WithInitialHeights seeds the height cache, e.g. with heights persisted by
// a previous session.
func WithInitialHeights(heights map[string]float64) Option {
	return func(o *confOptions) {
		o.initialHeights = heights
	}
}

// WithScrollDebounce sets the quiet period before a burst of scroll events
// recomputes the slice. Zero disables the debounce.
func WithScrollDebounce(d time.Duration) Option {
	return func(o *confOptions) {
		o.scrollDebounce = max(0, d)
	}
}

// WithOffscreenToViewportRatio sets how many viewport heights above and
// below the visible window stay mounted after a scroll.
func WithOffscreenToViewportRatio(ratio float64) Option {
	return func(o *confOptions) {
		if ratio >= 0 {
			o.offscreenRatio = ratio
		}
	}
}

// WithOnHeightUpdated registers a callback receiving the ids whose measured
// height changed, with their new heights.
func WithOnHeightUpdated(fn func(map[string]float64)) Option {
	return func(o *confOptions) {
		o.onHeightUpdated = fn
	}
}

// WithOnPositioningUpdated registers a callback receiving the positioning
// after every commit.
func WithOnPositioningUpdated(fn func(Snapshot)) Option {
	return func(o *confOptions) {
		o.onPositioningUpdated = fn
	}
}

// WithHeightCacheLimit bounds the height cache to n entries, evicting the
// least recently measured ids first.
func WithHeightCacheLimit(n int) Option {
	return func(o *confOptions) {
		o.heightCacheLimit = n
	}
}

// WithPruneHeights drops cached heights of ids that are no longer part of the
// item sequence whenever the sequence is replaced.
func WithPruneHeights() Option {
	return func(o *confOptions) {
		o.pruneHeights = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *confOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
