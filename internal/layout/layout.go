// Package layout runs the list controller without a terminal, to inspect
// which items it mounts for a given scroll position.
package layout

import (
	"fmt"

	"github.com/lazyfeed/lazyfeed/internal/tui/exp/lazylist"
)

const (
	maxPasses = 20
	maxTasks  = 1000
)

type Options struct {
	Items int
	// Height of every item once rendered.
	ItemHeight float64
	// Per item heights overriding ItemHeight, keyed by id.
	ItemHeights map[string]float64
	// Heights known before the first render, as persisted by the reader.
	InitialHeights map[string]float64

	Viewport     float64
	Assumed      float64
	Ratio        float64
	InitialIndex int
	// Offset scrolls to a line after mounting.
	Offset float64
	// ScrollTo scrolls to an item after mounting; negative skips it.
	ScrollTo int
}

type MountedItem struct {
	ID     string  `json:"id" yaml:"id"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

type Result struct {
	Items       int               `json:"items" yaml:"items"`
	Viewport    lazylist.Viewport `json:"viewport" yaml:"viewport"`
	SliceStart  int               `json:"slice_start" yaml:"slice_start"`
	SliceEnd    int               `json:"slice_end" yaml:"slice_end"`
	BlankAbove  float64           `json:"blank_above" yaml:"blank_above"`
	BlankBelow  float64           `json:"blank_below" yaml:"blank_below"`
	TotalHeight float64           `json:"total_height" yaml:"total_height"`
	Mounted     []MountedItem     `json:"mounted" yaml:"mounted"`
	// Number of scheduled callbacks that ran.
	Tasks int `json:"tasks" yaml:"tasks"`
}

// ItemID returns the id of the i-th simulated item.
func ItemID(i int) string {
	return fmt.Sprintf("item-%d", i)
}

type fixedHeight float64

func (h fixedHeight) Height() float64 { return float64(h) }

type simulation struct {
	opts  Options
	host  *lazylist.HeadlessHost
	sched *lazylist.ManualScheduler
	ctrl  *lazylist.Controller[string, []string]
	tasks int
}

// Simulate mounts a list of opts.Items items, applies the requested scroll
// and runs every scheduled callback until the list is idle.
func Simulate(opts Options) (Result, error) {
	if opts.Items < 0 {
		return Result{}, fmt.Errorf("item count must not be negative: %d", opts.Items)
	}
	if opts.Viewport <= 0 {
		return Result{}, fmt.Errorf("viewport height must be positive: %v", opts.Viewport)
	}
	if opts.ItemHeight <= 0 {
		return Result{}, fmt.Errorf("item height must be positive: %v", opts.ItemHeight)
	}

	ids := make([]string, opts.Items)
	for i := range ids {
		ids[i] = ItemID(i)
	}

	s := &simulation{
		opts:  opts,
		host:  &lazylist.HeadlessHost{Height: opts.Viewport},
		sched: &lazylist.ManualScheduler{},
	}
	lazyOpts := []lazylist.Option{
		lazylist.WithAssumedItemHeight(opts.Assumed),
		lazylist.WithInitialItemIndex(opts.InitialIndex),
		lazylist.WithInitialHeights(opts.InitialHeights),
		lazylist.WithScrollDebounce(lazylist.DefaultScrollDebounce),
	}
	if opts.Ratio > 0 {
		lazyOpts = append(lazyOpts, lazylist.WithOffscreenToViewportRatio(opts.Ratio))
	}
	s.ctrl = lazylist.New(s.host, ids, lazylist.Config[string, []string]{
		ID: func(id string) string { return id },
		RenderItem: func(id string, _ int, ref *lazylist.Ref) []string {
			ref.Bind(fixedHeight(s.heightOf(id)))
			return []string{id}
		},
		RenderList: func(items [][]string, _, _ float64) []string {
			var out []string
			for _, item := range items {
				out = append(out, item...)
			}
			return out
		},
	}, lazyOpts...)
	s.host.MaxOffset = func() float64 {
		return s.ctrl.Positioning().TotalHeight() - s.host.Height
	}

	s.ctrl.Render()
	s.ctrl.Mount(s.sched)
	s.run()

	if opts.Offset > 0 {
		s.host.ScrollBy(opts.Offset)
		s.ctrl.HandleScroll()
		s.run()
	}
	if opts.ScrollTo >= 0 {
		s.ctrl.ScrollToIndex(opts.ScrollTo)
		s.run()
	}
	s.ctrl.Unmount()
	return s.result(), nil
}

func (s *simulation) heightOf(id string) float64 {
	if h, ok := s.opts.ItemHeights[id]; ok && h > 0 {
		return h
	}
	return s.opts.ItemHeight
}

func (s *simulation) settle() {
	for range maxPasses {
		if !s.host.TakeInvalidated() {
			return
		}
		s.ctrl.Render()
		s.ctrl.Commit()
	}
}

// run renders until the list is idle. Debounced work fires as if the user
// stopped scrolling.
func (s *simulation) run() {
	for range maxPasses {
		s.settle()
		if s.sched.Pending() == 0 {
			return
		}
		s.tasks += s.sched.Flush(maxTasks)
	}
}

func (s *simulation) result() Result {
	pos := s.ctrl.Positioning()
	above, below := pos.BlankSpace()
	r := Result{
		Items:       len(pos.IDs),
		Viewport:    pos.Viewport,
		SliceStart:  pos.SliceStart,
		SliceEnd:    pos.SliceEnd,
		BlankAbove:  above,
		BlankBelow:  below,
		TotalHeight: pos.TotalHeight(),
		Mounted:     make([]MountedItem, 0, pos.SliceEnd-pos.SliceStart),
		Tasks:       s.tasks,
	}
	for i := pos.SliceStart; i < pos.SliceEnd; i++ {
		r.Mounted = append(r.Mounted, MountedItem{
			ID:     pos.IDs[i],
			Top:    pos.Rectangles[i].Top,
			Bottom: pos.Rectangles[i].Bottom,
		})
	}
	return r
}
