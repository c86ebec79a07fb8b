package lazylist

import "sort"

// Rectangle is a vertical span in list coordinates, where 0 is the top edge
// of the first item.
type Rectangle struct {
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// RectangleOf returns the rectangle starting at top with the given height.
func RectangleOf(top, height float64) Rectangle {
	return Rectangle{Top: top, Bottom: top + height}
}

// Height returns the height of the rectangle.
func (r Rectangle) Height() float64 {
	return r.Bottom - r.Top
}

// Expand grows the rectangle by d on both edges.
func (r Rectangle) Expand(d float64) Rectangle {
	return Rectangle{Top: r.Top - d, Bottom: r.Bottom + d}
}

// Intersects reports whether a and b overlap. Touching edges count.
func Intersects(a, b Rectangle) bool {
	return a.Top <= b.Bottom && a.Bottom >= b.Top
}

// HeightLookup returns the cached height for an item id.
type HeightLookup func(id string) (float64, bool)

// ComputeRectangles lays items out top to bottom. Items without a cached
// height take the assumed height. The result is aligned with ids.
func ComputeRectangles(ids []string, heights HeightLookup, assumed float64) []Rectangle {
	rects := make([]Rectangle, len(ids))
	top := 0.0
	for i, id := range ids {
		h, ok := heights(id)
		if !ok {
			h = assumed
		}
		rects[i] = RectangleOf(top, h)
		top = rects[i].Bottom
	}
	return rects
}

// totalHeight returns the bottom edge of the last rectangle.
func totalHeight(rects []Rectangle) float64 {
	if len(rects) == 0 {
		return 0
	}
	return rects[len(rects)-1].Bottom
}

// sliceFor returns the minimal [start, end) range of rects intersecting band.
// rects must be contiguous and ordered, as produced by ComputeRectangles.
func sliceFor(rects []Rectangle, band Rectangle) (int, int) {
	n := len(rects)
	start := sort.Search(n, func(i int) bool { return rects[i].Bottom >= band.Top })
	end := sort.Search(n, func(i int) bool { return rects[i].Top > band.Bottom })
	if end < start {
		end = start
	}
	return start, end
}

// blankSpace returns the height of the unmounted content above and below
// the [start, end) slice.
func blankSpace(rects []Rectangle, start, end int) (above, below float64) {
	total := totalHeight(rects)
	if start < len(rects) {
		above = rects[start].Top
	} else {
		above = total
	}
	if end > 0 && end <= len(rects) {
		below = total - rects[end-1].Bottom
	} else {
		below = total - above
	}
	return above, below
}
