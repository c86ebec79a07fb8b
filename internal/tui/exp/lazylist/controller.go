// Package lazylist renders the part of a long item list that is near the
// visible viewport. It caches the measured height of every item it has
// mounted and corrects the scroll position after heights or items change,
// so content above the viewport never moves what is on screen.
//
// The controller is driven by a single goroutine: the host calls Render,
// then Commit once the rendered output is in place, and forwards scroll and
// resize events. Deferred work runs through the host's Scheduler on that same
// goroutine.
package lazylist

import (
	"github.com/samber/lo"
	"github.com/zeebo/xxh3"
)

// NotScrolling is the scrolling item index when no scroll to an index is in
// progress.
const NotScrolling = -1

// Config holds the required render functions of a Controller.
type Config[T, R any] struct {
	// ID returns the identity key of an item.
	ID func(T) string
	// RenderItem renders one mounted item and binds its output to ref.
	RenderItem ItemRenderFunc[T, R]
	// RenderList wraps the mounted items. blankAbove and blankBelow are the
	// heights of the unmounted items before and after them.
	RenderList func(items []R, blankAbove, blankBelow float64) R
	// HeightOf measures bound output. Defaults to Measurable.Height.
	HeightOf func(Measurable) float64
}

type Controller[T, R any] struct {
	*confOptions

	cfg      Config[T, R]
	host     Host
	sched    Scheduler
	renderer *SliceRenderer[T, R]

	items     []T
	ids       []string
	itemsHash uint64

	heights heightCache

	sliceStart         int
	sliceEnd           int
	scrollingItemIndex int

	// rectangles are memoized on the versions they were computed for
	itemsVersion   uint64
	heightsVersion uint64
	rects          []Rectangle
	rectsItems     uint64
	rectsHeights   uint64
	rectsValid     bool

	// positioning before the first state update since the last commit
	pending      *Snapshot
	itemsChanged bool

	mounted  bool
	disposed bool

	debounceToken Token
	frameToken    Token
	idleToken     Token
}

// New creates a controller for items. The initial slice starts at the
// initial item index and covers one viewport height.
func New[T, R any](host Host, items []T, cfg Config[T, R], opts ...Option) *Controller[T, R] {
	c := &Controller[T, R]{
		confOptions:        defaultOptions(),
		cfg:                cfg,
		host:               host,
		scrollingItemIndex: NotScrolling,
	}
	for _, opt := range opts {
		opt(c.confOptions)
	}

	c.renderer = NewSliceRenderer(cfg.ID, cfg.RenderItem, cfg.HeightOf)
	c.heights = newHeightCache(c.heightCacheLimit)
	for id, h := range c.initialHeights {
		c.heights.Set(id, h)
	}

	c.replaceItems(items)
	c.sliceStart, c.sliceEnd = c.initialSlice(c.initialItemIndex)
	if c.initialItemIndex >= 0 {
		c.scrollingItemIndex = c.initialItemIndex
	}
	return c
}

// Mount attaches the scheduler and runs the first post-render pass. The
// host must have rendered the output of Render before calling Mount.
func (c *Controller[T, R]) Mount(sched Scheduler) {
	if c.disposed || c.mounted {
		return
	}
	c.sched = sched
	c.mounted = true
	c.Commit()
}

// Unmount cancels all pending work. The controller cannot be mounted again.
func (c *Controller[T, R]) Unmount() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.mounted = false
	if c.sched != nil {
		for _, tok := range []Token{c.debounceToken, c.frameToken, c.idleToken} {
			if tok != 0 {
				c.sched.Cancel(tok)
			}
		}
	}
	c.debounceToken, c.frameToken, c.idleToken = 0, 0, 0
	c.pending = nil
}

func (c *Controller[T, R]) active() bool {
	return c.mounted && !c.disposed && c.sched != nil
}

// Items returns the current item sequence.
func (c *Controller[T, R]) Items() []T {
	return c.items
}

// Slice returns the mounted index range [start, end).
func (c *Controller[T, R]) Slice() (int, int) {
	return c.sliceStart, c.sliceEnd
}

// ScrollingItemIndex returns the index being scrolled to, or NotScrolling.
func (c *Controller[T, R]) ScrollingItemIndex() int {
	return c.scrollingItemIndex
}

// Heights returns a copy of the height cache.
func (c *Controller[T, R]) Heights() map[string]float64 {
	out := make(map[string]float64, c.heights.Len())
	for _, id := range c.heights.Keys() {
		if h, ok := c.heights.Get(id); ok {
			out[id] = h
		}
	}
	return out
}

// Positioning captures the current rectangles, slice and viewport.
func (c *Controller[T, R]) Positioning() Snapshot {
	return Snapshot{
		IDs:        c.ids,
		Rectangles: c.rectangles(),
		SliceStart: c.sliceStart,
		SliceEnd:   c.sliceEnd,
		Viewport:   c.viewport(),
	}
}

// SetItems replaces the item sequence. When the item at the start of the
// slice is unchanged the slice start is kept, so appending items does not
// move the list. Any other replacement resets the list to the initial item.
func (c *Controller[T, R]) SetItems(items []T) {
	ids := lo.Map(items, func(item T, _ int) string { return c.cfg.ID(item) })
	if hashIDs(ids) == c.itemsHash && len(ids) == len(c.ids) {
		// same sequence of ids, only the item values changed
		c.items = items
		c.host.Invalidate()
		return
	}

	before := c.Positioning()
	startID, hadStart := "", c.sliceStart < len(c.ids)
	if hadStart {
		startID = c.ids[c.sliceStart]
	}

	c.replaceItems(items)
	if c.pruneHeights {
		c.prune()
	}

	if hadStart && c.sliceStart < len(c.ids) && c.ids[c.sliceStart] == startID {
		c.sliceEnd = min(c.sliceEnd, len(c.ids))
	} else {
		index := max(0, c.initialItemIndex)
		c.sliceStart, c.sliceEnd = c.initialSlice(index)
		c.scrollingItemIndex = index
		c.logger.Debug("Item sequence replaced, resetting slice", "index", index, "items", len(c.ids))
	}

	c.update(before, true)
}

func (c *Controller[T, R]) replaceItems(items []T) {
	c.items = items
	c.ids = lo.Map(items, func(item T, _ int) string { return c.cfg.ID(item) })
	c.itemsHash = hashIDs(c.ids)
	c.itemsVersion++
}

func (c *Controller[T, R]) prune() {
	keep := lo.SliceToMap(c.ids, func(id string) (string, struct{}) { return id, struct{}{} })
	removed := 0
	for _, id := range c.heights.Keys() {
		if _, ok := keep[id]; !ok {
			c.heights.Remove(id)
			removed++
		}
	}
	if removed > 0 {
		c.heightsVersion++
	}
}

func hashIDs(ids []string) uint64 {
	h := xxh3.New()
	for _, id := range ids {
		_, _ = h.WriteString(id)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Render renders the mounted slice wrapped with the blank space of the
// unmounted items.
func (c *Controller[T, R]) Render() R {
	rendered := c.renderer.Render(c.items, c.sliceStart, c.sliceEnd)
	above, below := blankSpace(c.rectangles(), c.sliceStart, c.sliceEnd)
	return c.cfg.RenderList(rendered, above, below)
}

// Commit runs after the host has put the output of Render in place. It
// measures the mounted items, finishes a pending scroll to an index, and
// otherwise keeps the anchor item steady when heights or items changed.
func (c *Controller[T, R]) Commit() {
	if !c.active() {
		return
	}

	before := c.pending
	itemsChanged := c.itemsChanged
	c.pending, c.itemsChanged = nil, false
	if before == nil {
		snap := c.Positioning()
		before = &snap
	}

	changed := c.measure()
	after := c.Positioning()

	switch {
	case c.scrollingItemIndex != NotScrolling:
		c.scrollToPendingIndex(after)
	case len(changed) > 0 || itemsChanged:
		if delta, ok := anchorDelta(*before, after); ok && delta != 0 {
			c.logger.Debug("Adjusting scroll to keep anchor", "delta", delta)
			c.host.ScrollBy(delta)
		}
	}

	if len(changed) > 0 {
		// blank space around the slice moved
		c.host.Invalidate()
	}
	if len(changed) > 0 || itemsChanged {
		c.scheduleIdle()
	}
	if c.onPositioningUpdated != nil {
		c.onPositioningUpdated(c.Positioning())
	}
}

// measure updates the height cache from the mounted items and returns the
// ids whose height changed.
func (c *Controller[T, R]) measure() map[string]float64 {
	changed := make(map[string]float64)
	measured := c.renderer.ItemHeights()
	// mounted items must not evict each other
	c.heights.Reserve(len(measured))
	for id, h := range measured {
		c.heights.Touch(id)
		if old, ok := c.heights.Get(id); ok && old == h {
			continue
		}
		c.heights.Set(id, h)
		changed[id] = h
	}
	if len(changed) > 0 {
		c.heightsVersion++
		if c.onHeightUpdated != nil {
			c.onHeightUpdated(changed)
		}
	}
	return changed
}

func (c *Controller[T, R]) scrollToPendingIndex(after Snapshot) {
	i := c.scrollingItemIndex
	if i < 0 || i >= len(after.Rectangles) {
		c.finishScrollToIndex()
		return
	}
	delta := roundDelta(after.Rectangles[i].Top - after.Viewport.Top)
	if delta == 0 {
		c.finishScrollToIndex()
		return
	}

	prev := c.host.ScrollOffset()
	c.host.ScrollBy(delta)
	if c.host.ScrollOffset() == prev {
		// the host clamped the scroll, the item is as close as it gets
		c.finishScrollToIndex()
		return
	}
	if roundDelta(after.Rectangles[i].Top-c.viewport().Top) == 0 {
		c.finishScrollToIndex()
		return
	}
	c.host.Invalidate()
}

// finishScrollToIndex ends a scroll to an index. The slice still holds only
// the target's initial slice, so it is recomputed around the final viewport.
func (c *Controller[T, R]) finishScrollToIndex() {
	c.scrollingItemIndex = NotScrolling
	c.requestFrame()
}

// ScrollToIndex scrolls item i to the top of the viewport. Items outside the
// slice are mounted first; the scroll completes on the following commit.
func (c *Controller[T, R]) ScrollToIndex(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	if i >= c.sliceStart && i < c.sliceEnd {
		if !c.active() {
			c.scrollingItemIndex = i
			c.host.Invalidate()
			return
		}
		pos := c.Positioning()
		if delta := roundDelta(pos.Rectangles[i].Top - pos.Viewport.Top); delta != 0 {
			c.host.ScrollBy(delta)
			c.HandleScroll()
		}
		return
	}

	before := c.Positioning()
	c.sliceStart, c.sliceEnd = c.initialSlice(i)
	c.scrollingItemIndex = i
	c.update(before, false)
}

// HandleScroll is called by the host on every scroll event. Bursts of
// events are debounced and recompute the slice at most once per frame.
func (c *Controller[T, R]) HandleScroll() {
	if !c.active() {
		return
	}
	if c.debounceToken != 0 {
		c.sched.Cancel(c.debounceToken)
		c.debounceToken = 0
	}
	if c.scrollDebounce <= 0 {
		c.requestFrame()
		return
	}
	c.debounceToken = c.sched.After(c.scrollDebounce, func() {
		c.debounceToken = 0
		if c.disposed {
			return
		}
		c.requestFrame()
	})
}

// HandleResize is called by the host when the viewport size changed.
func (c *Controller[T, R]) HandleResize() {
	c.HandleScroll()
}

func (c *Controller[T, R]) requestFrame() {
	if c.frameToken != 0 {
		return
	}
	c.frameToken = c.sched.RequestFrame(func() {
		c.frameToken = 0
		if c.disposed {
			return
		}
		c.updateSlice()
	})
}

// scheduleIdle re-evaluates the slice off the input path, after heights or
// items changed the layout.
func (c *Controller[T, R]) scheduleIdle() {
	if c.idleToken != 0 {
		return
	}
	run := func() {
		c.idleToken = 0
		if c.disposed {
			return
		}
		c.updateSlice()
	}
	if idle, ok := c.sched.(IdleScheduler); ok {
		c.idleToken = idle.RequestIdle(run)
		return
	}
	c.idleToken = c.sched.RequestFrame(run)
}

// updateSlice mounts every item intersecting the viewport grown by the
// offscreen ratio in both directions.
func (c *Controller[T, R]) updateSlice() {
	if !c.active() || c.scrollingItemIndex != NotScrolling {
		return
	}
	vp := c.viewport()
	band := vp.Rectangle().Expand(c.offscreenRatio * c.host.ViewportHeight())
	start, end := sliceFor(c.rectangles(), band)
	if start == c.sliceStart && end == c.sliceEnd {
		return
	}
	before := c.Positioning()
	c.sliceStart, c.sliceEnd = start, end
	c.update(before, false)
}

// update records the positioning before a state change and asks the host to
// render the new state.
func (c *Controller[T, R]) update(before Snapshot, itemsChanged bool) {
	if c.pending == nil {
		c.pending = &before
	}
	c.itemsChanged = c.itemsChanged || itemsChanged
	c.host.Invalidate()
}

// initialSlice starts at index and fills one viewport height.
func (c *Controller[T, R]) initialSlice(index int) (int, int) {
	n := len(c.ids)
	start := max(0, min(index, n))
	end := start
	vh := c.host.ViewportHeight()
	filled := 0.0
	for end < n && filled < vh {
		filled += c.heightAt(end)
		end++
	}
	return start, end
}

func (c *Controller[T, R]) heightAt(i int) float64 {
	if h, ok := c.heights.Get(c.ids[i]); ok {
		return h
	}
	return c.assumedItemHeight
}

func (c *Controller[T, R]) rectangles() []Rectangle {
	if c.rectsValid && c.rectsItems == c.itemsVersion && c.rectsHeights == c.heightsVersion {
		return c.rects
	}
	c.rects = ComputeRectangles(c.ids, c.heights.Get, c.assumedItemHeight)
	c.rectsItems, c.rectsHeights, c.rectsValid = c.itemsVersion, c.heightsVersion, true
	return c.rects
}

func (c *Controller[T, R]) viewport() Viewport {
	offset := c.host.ScrollOffset()
	top := offset - c.host.ListOffset()
	return Viewport{
		Top:          top,
		Bottom:       top + c.host.ViewportHeight(),
		ScrollOffset: offset,
	}
}
