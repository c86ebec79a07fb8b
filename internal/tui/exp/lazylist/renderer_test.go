package lazylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedHeight float64

func (f fixedHeight) Height() float64 { return float64(f) }

func TestSliceRenderer(t *testing.T) {
	t.Parallel()

	identity := func(s string) string { return s }

	t.Run("should render only the requested slice", func(t *testing.T) {
		t.Parallel()
		var indexes []int
		r := NewSliceRenderer(identity, func(item string, index int, ref *Ref) string {
			indexes = append(indexes, index)
			return "<" + item + ">"
		}, nil)

		out := r.Render([]string{"a", "b", "c", "d"}, 1, 3)
		assert.Equal(t, []string{"<b>", "<c>"}, out)
		assert.Equal(t, []int{1, 2}, indexes)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("should keep refs stable and release unrequested ids", func(t *testing.T) {
		t.Parallel()
		var passed []*Ref
		r := NewSliceRenderer(identity, func(item string, _ int, ref *Ref) string {
			passed = append(passed, ref)
			return item
		}, nil)

		items := []string{"a", "b", "c", "d"}
		r.Render(items, 0, 2)
		refA, ok := r.Ref("a")
		require.True(t, ok)
		refB, ok := r.Ref("b")
		require.True(t, ok)
		assert.Same(t, refA, passed[0])

		r.Render(items, 1, 3)
		_, ok = r.Ref("a")
		assert.False(t, ok, "a left the slice")
		again, ok := r.Ref("b")
		require.True(t, ok)
		assert.Same(t, refB, again)
		assert.Equal(t, "b", again.ID())

		r.Render(items, 0, 2)
		newA, ok := r.Ref("a")
		require.True(t, ok)
		assert.NotSame(t, refA, newA, "a released ref is not resurrected")
	})

	t.Run("should measure bound refs only", func(t *testing.T) {
		t.Parallel()
		r := NewSliceRenderer(identity, func(item string, _ int, ref *Ref) string {
			if item != "b" {
				ref.Bind(fixedHeight(len(item) * 10))
			}
			return item
		}, nil)
		r.Render([]string{"a", "b", "ccc"}, 0, 3)

		assert.Equal(t, map[string]float64{"a": 10, "ccc": 30}, r.ItemHeights())
	})

	t.Run("should use the custom height function", func(t *testing.T) {
		t.Parallel()
		r := NewSliceRenderer(identity, func(item string, _ int, ref *Ref) string {
			ref.Bind(fixedHeight(3))
			return item
		}, func(m Measurable) float64 { return m.Height() * 2 })
		r.Render([]string{"a"}, 0, 1)

		assert.Equal(t, map[string]float64{"a": 6}, r.ItemHeights())
	})

	t.Run("should clamp out of range slices", func(t *testing.T) {
		t.Parallel()
		r := NewSliceRenderer(identity, func(item string, _ int, _ *Ref) string { return item }, nil)
		assert.Empty(t, r.Render([]string{"a"}, 3, 9))
		assert.Equal(t, []string{"a"}, r.Render([]string{"a"}, -1, 9))
	})
}
