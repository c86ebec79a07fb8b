package list

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/lazyfeed/lazyfeed/internal/tui/exp/lazylist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id    string
	lines int
}

func (i testItem) ID() string {
	return i.id
}

func (i testItem) Render(width int, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}
	lines := make([]string, i.lines)
	for n := range lines {
		lines[n] = fmt.Sprintf("%s%s:%d", prefix, i.id, n)
	}
	return strings.Join(lines, "\n")
}

func createItems(n, lines int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{id: fmt.Sprintf("item-%d", i), lines: lines}
	}
	return items
}

// runTicks delivers every scheduled tick, the way the program would once
// their timers fire.
func runTicks(t *testing.T, l *List[testItem]) {
	t.Helper()
	for range 100 {
		if len(l.sched.tasks) == 0 {
			return
		}
		tok := slices.Min(keys(l.sched.tasks))
		l.Update(tickMsg{list: l.id, token: tok})
	}
	t.Fatal("list kept scheduling work")
}

func keys(m map[lazylist.Token]func()) []lazylist.Token {
	out := make([]lazylist.Token, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func newTestList(t *testing.T, items []testItem, opts ...ListOption) *List[testItem] {
	t.Helper()
	opts = append([]ListOption{WithSize(20, 5)}, opts...)
	l := New(items, opts...)
	l.Init()
	runTicks(t, l)
	return l
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("should render the top of the list", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		golden.RequireEqual(t, []byte(l.View()))
	})

	t.Run("should move the selection with the viewport", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		l.MoveDown(3)
		assert.Equal(t, 3, l.Offset())
		assert.Equal(t, 1, l.SelectedIndex())
		golden.RequireEqual(t, []byte(l.View()))
	})

	t.Run("should only render items near the viewport", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(1000, 2))
		pos, ok := l.Positioning()
		require.True(t, ok)
		assert.Equal(t, 0, pos.SliceStart)
		assert.Equal(t, 8, pos.SliceEnd)
		assert.Len(t, l.body, 16)
	})

	t.Run("should render nothing without a size", func(t *testing.T) {
		t.Parallel()
		l := New(createItems(3, 1))
		assert.Nil(t, l.Init())
		assert.Empty(t, l.View())
	})

	t.Run("should not pad a list shorter than the viewport", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(1, 2))
		assert.Equal(t, "> item-0:0\n> item-0:1", l.View())
	})

	t.Run("should separate items by the gap", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(3, 1), WithGap(1))
		assert.Equal(t, "> item-0:0\n\n  item-1:0\n\n  item-2:0", l.View())
	})
}

func TestListNavigation(t *testing.T) {
	t.Parallel()

	down := tea.KeyPressMsg(tea.Key{Code: tea.KeyDown})
	up := tea.KeyPressMsg(tea.Key{Code: tea.KeyUp})

	t.Run("should scroll the selected item into view", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))

		l.Update(down)
		assert.Equal(t, 1, l.SelectedIndex())
		assert.Equal(t, 0, l.Offset())

		l.Update(down)
		assert.Equal(t, 2, l.SelectedIndex())
		assert.Equal(t, 1, l.Offset())
		assert.True(t, strings.HasSuffix(l.View(), "> item-2:0\n> item-2:1"))

		l.Update(up)
		l.Update(up)
		assert.Equal(t, 0, l.SelectedIndex())
		assert.Equal(t, 0, l.Offset())
	})

	t.Run("should stop at the ends unless wrapping", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(3, 1))
		l.Update(up)
		assert.Equal(t, 0, l.SelectedIndex())

		w := newTestList(t, createItems(3, 1), WithWrapNavigation())
		w.Update(up)
		assert.Equal(t, 2, w.SelectedIndex())
		w.Update(down)
		assert.Equal(t, 0, w.SelectedIndex())
	})

	t.Run("should mount the last item when going to the bottom", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(1000, 2))

		l.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEnd}))
		assert.Equal(t, 999, l.SelectedIndex())
		assert.True(t, strings.HasSuffix(l.View(), "> item-999:0\n> item-999:1"))

		runTicks(t, l)
		assert.True(t, strings.HasSuffix(l.View(), "> item-999:0\n> item-999:1"))
		pos, _ := l.Positioning()
		assert.Equal(t, 1000, pos.SliceEnd)
		assert.Equal(t, lazylist.NotScrolling, l.ctrl.ScrollingItemIndex())

		l.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyHome}))
		assert.Equal(t, 0, l.SelectedIndex())
		assert.Equal(t, 0, l.Offset())
	})

	t.Run("should fill the viewport at the bottom when heights are known", func(t *testing.T) {
		t.Parallel()
		items := createItems(1000, 2)
		seed := make(map[string]float64, len(items))
		for _, item := range items {
			seed[item.id] = 2
		}
		l := newTestList(t, items, WithInitialHeights(20, seed))

		l.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEnd}))
		runTicks(t, l)
		assert.Equal(t, 1995, l.Offset())
		assert.Equal(t, "  item-997:1\n  item-998:0\n  item-998:1\n> item-999:0\n> item-999:1", l.View())
		pos, _ := l.Positioning()
		assert.LessOrEqual(t, pos.SliceStart, 997)
		assert.Equal(t, 1000, pos.SliceEnd)
	})

	t.Run("should scroll with the mouse wheel when enabled", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2), WithEnableMouse())
		l.Update(tea.MouseWheelMsg(tea.Mouse{Button: tea.MouseWheelDown}))
		assert.Equal(t, ViewportDefaultScrollSize, l.Offset())

		off := newTestList(t, createItems(20, 2))
		off.Update(tea.MouseWheelMsg(tea.Mouse{Button: tea.MouseWheelDown}))
		assert.Equal(t, 0, off.Offset())
	})

	t.Run("should ignore keys when blurred", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		l.Blur()
		l.Update(down)
		assert.Equal(t, 0, l.SelectedIndex())
		assert.False(t, strings.Contains(l.View(), ">"))
	})
}

func TestListItems(t *testing.T) {
	t.Parallel()

	t.Run("should keep the view steady when an item above grows", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(10, 2))
		l.MoveDown(4)
		require.Equal(t, 4, l.Offset())
		before := l.View()

		l.UpdateItem("item-0", testItem{id: "item-0", lines: 5})
		assert.Equal(t, 7, l.Offset())
		assert.Equal(t, before, l.View())
	})

	t.Run("should keep the selected item when items are replaced", func(t *testing.T) {
		t.Parallel()
		items := createItems(10, 1)
		l := newTestList(t, items)
		l.SetSelected("item-3")
		require.Equal(t, 3, l.SelectedIndex())

		l.SetItems(items[2:])
		assert.Equal(t, 1, l.SelectedIndex())
		assert.Equal(t, "item-3", l.SelectedItem().ID())

		l.SetItems(items[5:])
		assert.Equal(t, 0, l.SelectedIndex())
	})

	t.Run("should scroll to the selected item when it moves off screen", func(t *testing.T) {
		t.Parallel()
		items := createItems(10, 1)
		l := newTestList(t, items)
		l.SetSelected("item-3")
		runTicks(t, l)
		require.Contains(t, l.View(), "> item-3:0")

		replaced := make([]testItem, 0, 67)
		for i := range 60 {
			replaced = append(replaced, testItem{id: fmt.Sprintf("new-%d", i), lines: 1})
		}
		replaced = append(replaced, items[3:]...)
		l.SetItems(replaced)
		runTicks(t, l)
		assert.Equal(t, 60, l.SelectedIndex())
		assert.Contains(t, l.View(), "> item-3:0")
		assert.NotContains(t, l.View(), "new-0:0")
	})

	t.Run("should handle an empty list", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, nil)
		assert.Nil(t, l.SelectedItem())
		assert.Empty(t, l.View())
		assert.Nil(t, l.SelectItemBelow())

		l.SetItems(createItems(2, 1))
		runTicks(t, l)
		assert.Equal(t, "> item-0:0\n  item-1:0", l.View())
	})
}

func TestListLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("should keep heights per width", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		width, heights := l.Heights()
		assert.Equal(t, 20, width)
		assert.Contains(t, heights, "item-7")

		l.SetSize(30, 5)
		runTicks(t, l)
		width, _ = l.Heights()
		assert.Equal(t, 30, width)

		l.SetSize(20, 5)
		_, heights = l.Heights()
		assert.Contains(t, heights, "item-7")
	})

	t.Run("should seed heights from options", func(t *testing.T) {
		t.Parallel()
		l := New(createItems(20, 2),
			WithSize(20, 5),
			WithInitialHeights(20, map[string]float64{"item-0": 2, "item-1": 2, "item-2": 2}),
		)
		l.Init()
		pos, ok := l.Positioning()
		require.True(t, ok)
		assert.Equal(t, 3, pos.SliceEnd, "seeded heights fill the viewport with three items")
	})

	t.Run("should use seeded heights when the width changes", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		seed := map[string]float64{"item-0": 2, "item-1": 2, "item-2": 2}
		l.SeedHeights(20, map[string]float64{"item-0": 9})
		l.SeedHeights(40, seed)

		l.SetSize(40, 5)
		pos, ok := l.Positioning()
		require.True(t, ok)
		assert.Equal(t, 3, pos.SliceEnd)

		l.SetSize(20, 5)
		_, heights := l.Heights()
		assert.Equal(t, 2.0, heights["item-0"], "heights measured at a mounted width are kept")
	})

	t.Run("should drop ticks of other lists and cancelled work", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		_, cmd := l.Update(tickMsg{list: l.id + 1000, token: 1})
		assert.Nil(t, cmd)
		assert.False(t, l.sched.run(12345))
	})

	t.Run("should cancel pending work on close", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(20, 2))
		l.MoveDown(3)
		require.NotEmpty(t, l.sched.tasks)
		l.Close()
		assert.Empty(t, l.sched.tasks)
	})
}
