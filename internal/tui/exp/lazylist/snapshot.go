package lazylist

import "math"

// Viewport is the visible window in list coordinates.
type Viewport struct {
	Top          float64 `json:"top" yaml:"top"`
	Bottom       float64 `json:"bottom" yaml:"bottom"`
	ScrollOffset float64 `json:"scroll_offset" yaml:"scroll_offset"`
}

// Rectangle returns the viewport as a rectangle.
func (v Viewport) Rectangle() Rectangle {
	return Rectangle{Top: v.Top, Bottom: v.Bottom}
}

// Snapshot captures the positioning of the list at one point in time. It is
// never mutated after creation.
type Snapshot struct {
	IDs        []string    `json:"ids" yaml:"ids"`
	Rectangles []Rectangle `json:"rectangles" yaml:"rectangles"`
	SliceStart int         `json:"slice_start" yaml:"slice_start"`
	SliceEnd   int         `json:"slice_end" yaml:"slice_end"`
	Viewport   Viewport    `json:"viewport" yaml:"viewport"`
}

// TotalHeight returns the height of the whole item sequence.
func (s Snapshot) TotalHeight() float64 {
	return totalHeight(s.Rectangles)
}

// BlankSpace returns the unmounted height above and below the slice.
func (s Snapshot) BlankSpace() (above, below float64) {
	return blankSpace(s.Rectangles, s.SliceStart, s.SliceEnd)
}

// anchor returns the first item of the slice that intersects the viewport.
func (s Snapshot) anchor() (int, bool) {
	vp := s.Viewport.Rectangle()
	for i := s.SliceStart; i < s.SliceEnd && i < len(s.Rectangles); i++ {
		if Intersects(s.Rectangles[i], vp) {
			return i, true
		}
	}
	return -1, false
}

// indexInSlice returns the index of id within the slice, or -1.
func (s Snapshot) indexInSlice(id string) int {
	for i := s.SliceStart; i < s.SliceEnd && i < len(s.IDs); i++ {
		if s.IDs[i] == id {
			return i
		}
	}
	return -1
}

// anchorDelta returns how far the scroll position has to move so the anchor
// item of before keeps its on-screen position in after. Viewport movement
// between the two snapshots is the user's own scroll and is kept.
func anchorDelta(before, after Snapshot) (float64, bool) {
	i, ok := before.anchor()
	if !ok {
		return 0, false
	}
	j := after.indexInSlice(before.IDs[i])
	if j < 0 {
		return 0, false
	}
	return roundDelta(after.Rectangles[j].Top - before.Rectangles[i].Top), true
}

// roundDelta rounds up when content grew and down when it shrank, so a
// fractional remainder never bounces the scroll position back and forth.
func roundDelta(d float64) float64 {
	if d > 0 {
		return math.Ceil(d)
	}
	return math.Floor(d)
}
