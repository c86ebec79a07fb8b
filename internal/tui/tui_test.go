package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/lazyfeed/lazyfeed/internal/config"
	"github.com/lazyfeed/lazyfeed/internal/db"
	"github.com/lazyfeed/lazyfeed/internal/entry"
	"github.com/lazyfeed/lazyfeed/internal/notification"
	"github.com/lazyfeed/lazyfeed/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStream = `{
  "id": "feed/go",
  "title": "Go",
  "items": [
    {"id": "a", "title": "Range Over Function Types", "published": 1723075200000,
     "summary": {"content": "<p>Loops over iterators.</p>"},
     "alternate": [{"href": "https://go.dev/blog/range-functions"}]},
    {"id": "b", "title": "Go 1.23 is released", "published": 1723680000000,
     "summary": {"content": "<p>Release notes.</p>"}},
    {"id": "c", "title": "Telemetry", "published": 1720000000000}
  ]
}`

type testApp struct {
	m       *Model
	entries entry.Service
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cwd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "go.json"), []byte(testStream), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".lazyfeed.json"),
		[]byte(`{"feeds":[{"name":"go","path":"go.json"}],"list":{"scroll_debounce_ms":10}}`), 0o644))

	cfg, err := config.Init(cwd, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	conn, err := db.Connect(ctx, cfg.Options.DataDirectory)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	svc := entry.NewService(conn, db.New(conn))

	m := New(ctx, cfg, svc, Options{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m.Update(m.importFeeds()())
	return testApp{m: m, entries: svc}
}

func (a testApp) view() string {
	return ansi.Strip(a.m.View())
}

// applyEvents feeds the queued entry events to the model and returns how
// many of them were updates.
func (a testApp) applyEvents() int {
	updates := 0
	for {
		select {
		case ev := <-a.m.events:
			if ev.Type == pubsub.UpdatedEvent {
				updates++
			}
			a.m.Update(ev)
		case <-time.After(50 * time.Millisecond):
			return updates
		}
	}
}

func press(m *Model, k tea.Key) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg(k))
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, tea.Key{Code: r, Text: string(r)})
	}
}

func TestModel(t *testing.T) {
	t.Run("should import the configured feeds", func(t *testing.T) {
		app := newTestApp(t)
		view := app.view()
		assert.Contains(t, view, "3 entries · 3 unread")
		assert.Contains(t, view, "Go 1.23 is released")
		assert.Contains(t, view, "Telemetry")
		assert.Len(t, app.m.list.Items(), 3)
		assert.Equal(t, "b", app.m.selected().ID(), "newest entry first")
	})

	t.Run("should fill the terminal height", func(t *testing.T) {
		app := newTestApp(t)
		assert.Len(t, strings.Split(app.m.View(), "\n"), 20)
	})

	t.Run("should toggle read state", func(t *testing.T) {
		app := newTestApp(t)
		app.applyEvents()
		cmd := press(app.m, tea.Key{Code: 'm', Text: "m"})
		require.NotNil(t, cmd)
		assert.Nil(t, cmd(), "the update arrives as an event")
		assert.Equal(t, 1, app.applyEvents())
		assert.Contains(t, app.view(), "3 entries · 2 unread")
		assert.False(t, app.m.selected().Entry().Unread)

		e, err := app.entries.Get(context.Background(), "b")
		require.NoError(t, err)
		assert.False(t, e.Unread)
	})

	t.Run("should pin the selected entry", func(t *testing.T) {
		app := newTestApp(t)
		app.applyEvents()
		cmd := press(app.m, tea.Key{Code: 'p', Text: "p"})
		require.NotNil(t, cmd)
		assert.Nil(t, cmd())
		assert.Equal(t, 1, app.applyEvents())
		assert.True(t, app.m.selected().Entry().Pinned)
		assert.Contains(t, app.view(), "★ Go 1.23 is released")
	})

	t.Run("should expand the selected entry", func(t *testing.T) {
		app := newTestApp(t)
		press(app.m, tea.Key{Code: tea.KeyEnter})
		assert.True(t, app.m.selected().Expanded())
		assert.Contains(t, app.view(), "Release notes.")

		press(app.m, tea.Key{Code: tea.KeyEnter})
		assert.False(t, app.m.selected().Expanded())
	})

	t.Run("should filter entries", func(t *testing.T) {
		app := newTestApp(t)
		press(app.m, tea.Key{Code: '/', Text: "/"})
		require.True(t, app.m.filtering)
		typeText(app.m, "telem")
		require.Len(t, app.m.list.Items(), 1)
		assert.Equal(t, "c", app.m.list.Items()[0].ID())
		assert.Contains(t, app.view(), "1 shown")

		press(app.m, tea.Key{Code: tea.KeyEnter})
		assert.False(t, app.m.filtering)
		assert.Len(t, app.m.list.Items(), 1)

		press(app.m, tea.Key{Code: tea.KeyEscape})
		assert.Len(t, app.m.list.Items(), 3)
	})

	t.Run("should keep expanded entries across reloads", func(t *testing.T) {
		app := newTestApp(t)
		press(app.m, tea.Key{Code: tea.KeyEnter})
		app.m.Update(app.m.importFeeds()())
		assert.True(t, app.m.selected().Expanded())
	})

	t.Run("should save heights on quit", func(t *testing.T) {
		app := newTestApp(t)
		cmd := press(app.m, tea.Key{Code: 'q', Text: "q"})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())

		heights, err := app.entries.LoadHeights(context.Background(), 80)
		require.NoError(t, err)
		assert.Contains(t, heights, "b")
	})

	t.Run("should seed heights when the width changes", func(t *testing.T) {
		app := newTestApp(t)
		ctx := context.Background()
		require.NoError(t, app.entries.SaveHeights(ctx, 100, map[string]float64{"a": 7, "b": 7, "c": 7}))

		app.m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
		width, heights := app.m.list.Heights()
		assert.Equal(t, 100, width)
		assert.Contains(t, heights, "c")

		saved, err := app.entries.LoadHeights(ctx, 80)
		require.NoError(t, err)
		assert.NotEmpty(t, saved, "heights of the previous width are saved")
	})

	t.Run("should notify about new entries of a changed feed", func(t *testing.T) {
		app := newTestApp(t)
		titles := make(chan string, 1)
		app.m.notifier = notification.New(true, notification.WithSender(func(_ context.Context, title, message string) error {
			titles <- title + ": " + message
			return nil
		}))

		path := app.m.cfg.FeedPaths()[0]
		updated := strings.Replace(testStream, `"items": [`,
			`"items": [
    {"id": "d", "title": "Structured Logging", "published": 1723700000000},`, 1)
		require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

		app.m.Update(app.m.importFeeds(path)())
		assert.Equal(t, "1 new entry: Structured Logging", <-titles)
		assert.Contains(t, app.view(), "4 entries · 4 unread")
	})
}
