package lazylist

// Measurable is implemented by rendered item output that can report its
// height.
type Measurable interface {
	Height() float64
}

// Ref is the measurement handle of one item id. The renderer hands it to the
// item render func, which binds the rendered output to it.
type Ref struct {
	id   string
	node Measurable
}

// ID returns the item id the ref belongs to.
func (r *Ref) ID() string {
	return r.id
}

// Bind attaches the rendered output of the item.
func (r *Ref) Bind(node Measurable) {
	r.node = node
}

// Node returns the bound output, or nil before the item was rendered.
func (r *Ref) Node() Measurable {
	return r.node
}

// ItemRenderFunc renders one item.
type ItemRenderFunc[T, R any] func(item T, index int, ref *Ref) R

// SliceRenderer renders a contiguous slice of items and keeps one Ref per
// rendered id.
type SliceRenderer[T, R any] struct {
	id       func(T) string
	render   ItemRenderFunc[T, R]
	heightOf func(Measurable) float64
	refs     map[string]*Ref
}

// NewSliceRenderer creates a renderer. heightOf may be nil, in which case
// Measurable.Height is used.
func NewSliceRenderer[T, R any](id func(T) string, render ItemRenderFunc[T, R], heightOf func(Measurable) float64) *SliceRenderer[T, R] {
	if heightOf == nil {
		heightOf = func(m Measurable) float64 { return m.Height() }
	}
	return &SliceRenderer[T, R]{
		id:       id,
		render:   render,
		heightOf: heightOf,
		refs:     make(map[string]*Ref),
	}
}

// Render renders items[start:end]. Refs of ids outside the range are
// released.
func (s *SliceRenderer[T, R]) Render(items []T, start, end int) []R {
	start = max(0, min(start, len(items)))
	end = max(start, min(end, len(items)))

	out := make([]R, 0, end-start)
	requested := make(map[string]struct{}, end-start)
	for i := start; i < end; i++ {
		item := items[i]
		id := s.id(item)
		requested[id] = struct{}{}
		ref, ok := s.refs[id]
		if !ok {
			ref = &Ref{id: id}
			s.refs[id] = ref
		}
		out = append(out, s.render(item, i, ref))
	}
	for id := range s.refs {
		if _, ok := requested[id]; !ok {
			delete(s.refs, id)
		}
	}
	return out
}

// ItemHeights measures every registered ref that has rendered output.
func (s *SliceRenderer[T, R]) ItemHeights() map[string]float64 {
	heights := make(map[string]float64, len(s.refs))
	for id, ref := range s.refs {
		if ref.node == nil {
			continue
		}
		heights[id] = s.heightOf(ref.node)
	}
	return heights
}

// Ref returns the registered ref for id.
func (s *SliceRenderer[T, R]) Ref(id string) (*Ref, bool) {
	ref, ok := s.refs[id]
	return ref, ok
}

// Len returns the number of registered refs.
func (s *SliceRenderer[T, R]) Len() int {
	return len(s.refs)
}
