// Package tui is the interactive feed reader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/lazyfeed/lazyfeed/internal/config"
	"github.com/lazyfeed/lazyfeed/internal/entry"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/lazyfeed/lazyfeed/internal/notification"
	"github.com/lazyfeed/lazyfeed/internal/pubsub"
	entryitem "github.com/lazyfeed/lazyfeed/internal/tui/components/entry"
	"github.com/lazyfeed/lazyfeed/internal/tui/exp/lazylist"
	"github.com/lazyfeed/lazyfeed/internal/tui/exp/list"
	"github.com/lazyfeed/lazyfeed/internal/tui/styles"
	"github.com/samber/lo"
)

const statusTimeout = 3 * time.Second

type (
	entriesLoadedMsg struct {
		entries []feed.Entry
		err     error
		// Set when a watched feed changed on disk.
		changed bool
	}
	feedChangedMsg struct {
		path string
	}
	statusMsg struct {
		text string
		err  bool
	}
	clearStatusMsg struct {
		seq int
	}
)

// Options configures the reader at start.
type Options struct {
	// Width is the terminal width Heights were measured at.
	Width   int
	Heights map[string]float64
	Watcher *feed.Watcher
}

type Model struct {
	ctx      context.Context
	cfg      *config.Config
	entries  entry.Service
	watcher  *feed.Watcher
	notifier *notification.Notifier
	events   <-chan pubsub.Event[feed.Entry]

	list  *list.List[*entryitem.Item]
	items map[string]*entryitem.Item
	all   []feed.Entry

	filter    textinput.Model
	filtering bool
	help      help.Model
	keyMap    KeyMap

	width, height int

	status    string
	statusErr bool
	statusSeq int
}

func New(ctx context.Context, cfg *config.Config, entries entry.Service, opts Options) *Model {
	t := styles.CurrentTheme()

	lazyOpts := []lazylist.Option{
		lazylist.WithAssumedItemHeight(cfg.List.AssumedItemHeight),
		lazylist.WithOffscreenToViewportRatio(cfg.List.OffscreenToViewportRatio),
		lazylist.WithScrollDebounce(cfg.List.ScrollDebounce()),
	}
	if cfg.List.HeightCacheLimit > 0 {
		lazyOpts = append(lazyOpts, lazylist.WithHeightCacheLimit(cfg.List.HeightCacheLimit))
	}
	if cfg.List.PruneHeights {
		lazyOpts = append(lazyOpts, lazylist.WithPruneHeights())
	}

	l := list.New[*entryitem.Item](nil,
		list.WithGap(cfg.List.Gap),
		list.WithEnableMouse(),
		list.WithInitialHeights(opts.Width, opts.Heights),
		list.WithLazyOptions(lazyOpts...),
	)

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter entries"

	h := help.New()
	h.Styles = t.S().Help

	return &Model{
		ctx:      ctx,
		cfg:      cfg,
		entries:  entries,
		watcher:  opts.Watcher,
		notifier: notification.New(cfg.Options.Notifications),
		events:   entries.Subscribe(ctx),
		list:     l,
		items:    make(map[string]*entryitem.Item),
		filter:   filter,
		help:     h,
		keyMap:   DefaultKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.list.Init(),
		m.importFeeds(),
		waitForEntryEvent(m.events),
		waitForFeedChange(m.watcher),
	)
}

func waitForEntryEvent(ch <-chan pubsub.Event[feed.Entry]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

func waitForFeedChange(w *feed.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-w.Events()
		if !ok {
			return nil
		}
		return feedChangedMsg{path: path}
	}
}

// importFeeds imports the given stream files, or every configured one, and
// loads the entries.
func (m *Model) importFeeds(paths ...string) tea.Cmd {
	changed := len(paths) > 0
	if !changed {
		paths = m.cfg.FeedPaths()
	}
	ctx, svc := m.ctx, m.entries
	return func() tea.Msg {
		var errs []error
		for _, path := range paths {
			stream, err := feed.LoadFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if _, err := svc.Import(ctx, stream); err != nil {
				errs = append(errs, err)
			}
		}
		entries, err := svc.List(ctx, entry.ListOptions{})
		if err != nil {
			errs = append(errs, err)
		}
		return entriesLoadedMsg{entries: entries, err: errors.Join(errs...), changed: changed}
	}
}

// notifyNew announces unread entries that were not loaded before.
func (m *Model) notifyNew(entries []feed.Entry) {
	if !m.notifier.Enabled() {
		return
	}
	known := lo.SliceToMap(m.all, func(e feed.Entry) (string, struct{}) {
		return e.ID, struct{}{}
	})
	fresh := lo.Filter(entries, func(e feed.Entry, _ int) bool {
		_, ok := known[e.ID]
		return e.Unread && !ok
	})
	m.notifier.NotifyNewEntries(m.ctx, len(fresh), lo.Map(fresh, func(e feed.Entry, _ int) string {
		return e.Title
	}))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case entriesLoadedMsg:
		var cmds []tea.Cmd
		if msg.err != nil {
			slog.Error("Failed to load entries", "error", msg.err)
			cmds = append(cmds, m.setStatus(msg.err.Error(), true))
		}
		if msg.entries != nil {
			if msg.changed {
				m.notifyNew(msg.entries)
			}
			m.all = msg.entries
			cmds = append(cmds, m.applyFilter())
		}
		return m, tea.Batch(cmds...)
	case pubsub.Event[feed.Entry]:
		var cmd tea.Cmd
		if msg.Type == pubsub.UpdatedEvent {
			cmd = m.updateEntry(msg.Payload)
		}
		return m, tea.Batch(cmd, waitForEntryEvent(m.events))
	case feedChangedMsg:
		slog.Info("Reloading changed feed", "path", msg.path)
		return m, tea.Batch(m.importFeeds(msg.path), waitForFeedChange(m.watcher))
	case statusMsg:
		return m, m.setStatus(msg.text, msg.err)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.saveHeights()
		m.list.Close()
		return tea.Quit
	case key.Matches(msg, m.keyMap.Expand):
		return m.toggleExpanded()
	case key.Matches(msg, m.keyMap.MarkRead):
		return m.withSelected(func(e feed.Entry) (feed.Entry, error) {
			return m.entries.MarkRead(m.ctx, e.ID, e.Unread)
		})
	case key.Matches(msg, m.keyMap.Pin):
		return m.withSelected(func(e feed.Entry) (feed.Entry, error) {
			return m.entries.TogglePin(m.ctx, e.ID)
		})
	case key.Matches(msg, m.keyMap.Copy):
		return m.copyURL()
	case key.Matches(msg, m.keyMap.Filter):
		m.filtering = true
		return tea.Batch(m.filter.Focus(), m.layout())
	case key.Matches(msg, m.keyMap.ClearFilter):
		if m.filter.Value() == "" {
			return nil
		}
		m.filter.SetValue("")
		return tea.Batch(m.applyFilter(), m.layout())
	case key.Matches(msg, m.keyMap.Reload):
		return tea.Batch(m.setStatus("Reloading feeds", false), m.importFeeds())
	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.layout()
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		return tea.Batch(m.applyFilter(), m.layout())
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m.layout()
	}
	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() == prev {
		return cmd
	}
	return tea.Batch(cmd, m.applyFilter())
}

func (m *Model) itemFor(e feed.Entry) *entryitem.Item {
	item, ok := m.items[e.ID]
	if !ok {
		item = entryitem.New(e)
		m.items[e.ID] = item
		return item
	}
	item.SetEntry(e)
	return item
}

// applyFilter shows the entries matching the filter query.
func (m *Model) applyFilter() tea.Cmd {
	entries := feed.Filter(m.all, m.filter.Value())
	items := lo.Map(entries, func(e feed.Entry, _ int) *entryitem.Item {
		return m.itemFor(e)
	})
	return m.list.SetItems(items)
}

func (m *Model) updateEntry(e feed.Entry) tea.Cmd {
	for i := range m.all {
		if m.all[i].ID == e.ID {
			m.all[i] = e
			break
		}
	}
	item, ok := m.items[e.ID]
	if !ok {
		return nil
	}
	item.SetEntry(e)
	return m.list.UpdateItem(e.ID, item)
}

func (m *Model) selected() *entryitem.Item {
	s := m.list.SelectedItem()
	if s == nil {
		return nil
	}
	return *s
}

func (m *Model) toggleExpanded() tea.Cmd {
	item := m.selected()
	if item == nil {
		return nil
	}
	item.ToggleExpanded()
	cmd := m.list.UpdateItem(item.ID(), item)
	if item.Expanded() && item.Entry().Unread {
		return tea.Batch(cmd, m.withSelected(func(e feed.Entry) (feed.Entry, error) {
			return m.entries.MarkRead(m.ctx, e.ID, true)
		}))
	}
	return cmd
}

// withSelected runs fn on the selected entry. The updated entry comes back
// through the service's events; only failures are reported here.
func (m *Model) withSelected(fn func(feed.Entry) (feed.Entry, error)) tea.Cmd {
	item := m.selected()
	if item == nil {
		return nil
	}
	e := item.Entry()
	return func() tea.Msg {
		if _, err := fn(e); err != nil {
			return statusMsg{text: err.Error(), err: true}
		}
		return nil
	}
}

func (m *Model) copyURL() tea.Cmd {
	item := m.selected()
	if item == nil {
		return nil
	}
	url := item.Entry().URL
	if url == "" {
		return m.setStatus("Entry has no link", true)
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(url); err != nil {
			return statusMsg{text: fmt.Sprintf("Failed to copy: %v", err), err: true}
		}
		return statusMsg{text: "Copied " + url}
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status, m.statusErr = text, isErr
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// saveHeights stores the heights measured at the current width.
func (m *Model) saveHeights() {
	width, heights := m.list.Heights()
	if width <= 0 || len(heights) == 0 {
		return
	}
	if m.cfg.List.PruneHeights {
		heights = lo.PickByKeys(heights, lo.Keys(m.items))
	}
	if err := m.entries.SaveHeights(m.ctx, width, heights); err != nil {
		slog.Error("Failed to save item heights", "width", width, "error", err)
	}
}

func (m *Model) resize(width, height int) tea.Cmd {
	if width != m.width && width > 0 {
		if m.width > 0 {
			m.saveHeights()
		}
		heights, err := m.entries.LoadHeights(m.ctx, width)
		if err != nil {
			slog.Warn("Failed to load item heights", "width", width, "error", err)
		}
		m.list.SeedHeights(width, heights)
	}
	m.width, m.height = width, height
	m.filter.SetWidth(max(1, width-ansi.StringWidth(m.filter.Prompt)-1))
	return m.layout()
}

func (m *Model) footerHeight() int {
	h := 1
	if m.help.ShowAll {
		groups := keyHelp{app: m.keyMap, list: m.list.KeyMap()}.FullHelp()
		h = lo.Max(lo.Map(groups, func(g []key.Binding, _ int) int { return len(g) }))
	}
	if m.filtering || m.filter.Value() != "" {
		h++
	}
	return h
}

// layout gives the list the space left by the header and the footer.
func (m *Model) layout() tea.Cmd {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	return m.list.SetSize(m.width, max(0, m.height-1-m.footerHeight()))
}

func (m *Model) header() string {
	t := styles.CurrentTheme()
	unread := lo.CountBy(m.all, func(e feed.Entry) bool { return e.Unread })
	parts := []string{
		t.S().Title.Render("lazyfeed"),
		t.S().Muted.Render(fmt.Sprintf("%d entries · %d unread", len(m.all), unread)),
	}
	if m.filter.Value() != "" {
		parts = append(parts, t.S().Subtle.Render(fmt.Sprintf("%d shown", len(m.list.Items()))))
	}
	if m.status != "" {
		style := t.S().Info
		if m.statusErr {
			style = t.S().Error
		}
		parts = append(parts, style.Render(m.status))
	}
	return ansi.Truncate(" "+strings.Join(parts, "  "), m.width, "…")
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	_, listHeight := m.list.GetSize()

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = styles.CurrentTheme().S().Muted.Render(" No entries.")
	}
	lines := strings.Split(body, "\n")
	for len(lines) < listHeight {
		lines = append(lines, "")
	}
	b.WriteString(strings.Join(lines[:listHeight], "\n"))

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("\n")
		b.WriteString(ansi.Truncate(m.filter.View(), m.width, ""))
	}

	helpView := m.help.View(keyHelp{app: m.keyMap, list: m.list.KeyMap()})
	for _, line := range strings.Split(helpView, "\n") {
		b.WriteString("\n")
		b.WriteString(ansi.Truncate(" "+line, m.width, "…"))
	}
	return b.String()
}
