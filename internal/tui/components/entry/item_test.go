package entry

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainLines(s string) []string {
	return strings.Split(ansi.Strip(s), "\n")
}

func TestItem(t *testing.T) {
	t.Parallel()

	e := feed.Entry{
		ID:      "e1",
		Title:   "Range Over Function Types",
		Origin:  "The Go Blog",
		Author:  "Ian",
		Summary: "<p>Loops over <b>iterators</b>.</p><p>Second paragraph.</p><p>Third paragraph.</p>",
		Unread:  true,
	}

	t.Run("should render title, meta and a preview", func(t *testing.T) {
		t.Parallel()
		lines := plainLines(New(e).Render(60, false))
		require.Len(t, lines, 4)
		assert.Equal(t, "  ● Range Over Function Types", lines[0])
		assert.Equal(t, "    The Go Blog · Ian", lines[1])
		assert.Equal(t, "    Loops over **iterators**.", lines[2])
		assert.Equal(t, "    Second paragraph.", lines[3])
	})

	t.Run("should mark the selected entry in the gutter", func(t *testing.T) {
		t.Parallel()
		lines := plainLines(New(e).Render(60, true))
		for _, line := range lines {
			assert.True(t, strings.HasPrefix(line, "▌ "), line)
		}
	})

	t.Run("should never exceed the width", func(t *testing.T) {
		t.Parallel()
		item := New(e)
		for _, width := range []int{8, 20, 33} {
			for _, expanded := range []bool{false, true} {
				item.SetExpanded(expanded)
				for _, line := range strings.Split(item.Render(width, true), "\n") {
					assert.LessOrEqual(t, ansi.StringWidth(line), width)
				}
			}
		}
	})

	t.Run("should show the full body when expanded", func(t *testing.T) {
		t.Parallel()
		item := New(e)
		collapsed := item.Render(60, false)
		item.ToggleExpanded()
		require.True(t, item.Expanded())
		expanded := item.Render(60, false)

		assert.Greater(t, strings.Count(expanded, "\n"), strings.Count(collapsed, "\n"))
		assert.Contains(t, ansi.Strip(expanded), "Third")
	})

	t.Run("should show a placeholder for empty bodies", func(t *testing.T) {
		t.Parallel()
		item := New(feed.Entry{ID: "empty", Title: "Empty"})
		assert.Equal(t, []string{"    Empty"}, plainLines(item.Render(40, false)))
		item.SetExpanded(true)
		assert.Contains(t, ansi.Strip(item.Render(40, false)), "No content.")
	})

	t.Run("should show pins and relative dates", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
		item := New(feed.Entry{ID: "p", Title: "Pinned", Pinned: true, Published: now.Add(-3 * time.Hour)})
		item.now = func() time.Time { return now }
		lines := plainLines(item.Render(40, false))
		require.Len(t, lines, 2)
		assert.Equal(t, "  ★ Pinned", lines[0])
		assert.Equal(t, "    3 hours ago", lines[1])
	})

	t.Run("should drop rendered bodies when the content changes", func(t *testing.T) {
		t.Parallel()
		item := New(e)
		item.SetExpanded(true)
		_ = item.Render(60, false)
		require.Len(t, item.bodies, 1)

		changed := e
		changed.Unread = false
		item.SetEntry(changed)
		assert.Len(t, item.bodies, 1)

		changed.Summary = "<p>Rewritten.</p>"
		item.SetEntry(changed)
		assert.Empty(t, item.bodies)
		assert.Contains(t, ansi.Strip(item.Render(60, false)), "Rewritten.")
	})
}
