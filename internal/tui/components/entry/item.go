// Package entry renders feed entries as list items.
package entry

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour/v2"
	glamourstyles "github.com/charmbracelet/glamour/v2/styles"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/lazyfeed/lazyfeed/internal/tui/styles"
)

const (
	gutterWidth = 2
	// lines of the summary shown for collapsed entries
	previewLines = 2
)

// Item is an entry of the feed list. It expands to the full markdown body.
type Item struct {
	entry    feed.Entry
	expanded bool

	markdown *string
	// rendered bodies by content width
	bodies map[int]string
	now    func() time.Time
}

func New(e feed.Entry) *Item {
	return &Item{
		entry:  e,
		bodies: make(map[int]string),
		now:    time.Now,
	}
}

func (i *Item) ID() string {
	return i.entry.ID
}

func (i *Item) Entry() feed.Entry {
	return i.entry
}

// SetEntry replaces the entry data. Rendered bodies are dropped when the
// content changed.
func (i *Item) SetEntry(e feed.Entry) {
	if e.Content != i.entry.Content || e.Summary != i.entry.Summary {
		i.markdown = nil
		i.bodies = make(map[int]string)
	}
	i.entry = e
}

func (i *Item) Expanded() bool {
	return i.expanded
}

func (i *Item) SetExpanded(expanded bool) {
	i.expanded = expanded
}

func (i *Item) ToggleExpanded() {
	i.expanded = !i.expanded
}

func (i *Item) body() string {
	if i.markdown == nil {
		md := i.entry.Markdown()
		i.markdown = &md
	}
	return *i.markdown
}

// Render draws the entry in at most width columns.
func (i *Item) Render(width int, selected bool) string {
	t := styles.CurrentTheme()
	contentWidth := max(1, width-gutterWidth)

	lines := []string{i.titleLine(contentWidth)}
	if meta := i.metaLine(contentWidth); meta != "" {
		lines = append(lines, meta)
	}
	if i.expanded {
		lines = append(lines, i.expandedBody(contentWidth)...)
	} else {
		lines = append(lines, i.preview(contentWidth)...)
	}

	gutter := "  "
	if selected {
		gutter = lipgloss.NewStyle().Foreground(t.Primary).Render("▌") + " "
	}
	for n, line := range lines {
		lines[n] = gutter + ansi.Truncate(line, contentWidth, "")
	}
	return strings.Join(lines, "\n")
}

func (i *Item) titleLine(width int) string {
	t := styles.CurrentTheme()
	var icon string
	switch {
	case i.entry.Pinned:
		icon = t.S().Warning.Render("★") + " "
	case i.entry.Unread:
		icon = t.S().Info.Render("●") + " "
	default:
		icon = "  "
	}
	titleStyle := t.S().Text
	if i.entry.Unread {
		titleStyle = t.S().Title
	}
	title := ansi.Truncate(i.entry.Title, max(1, width-lipgloss.Width(icon)), "…")
	return icon + titleStyle.Render(title)
}

func (i *Item) metaLine(width int) string {
	var parts []string
	if i.entry.Origin != "" {
		parts = append(parts, i.entry.Origin)
	}
	if i.entry.Author != "" {
		parts = append(parts, i.entry.Author)
	}
	if !i.entry.Published.IsZero() {
		parts = append(parts, humanize.RelTime(i.entry.Published, i.now(), "ago", "from now"))
	}
	if len(parts) == 0 {
		return ""
	}
	meta := ansi.Truncate("  "+strings.Join(parts, " · "), width, "…")
	return styles.CurrentTheme().S().Muted.Render(meta)
}

func (i *Item) preview(width int) []string {
	body := i.body()
	if body == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, "  "+ansi.Truncate(line, max(1, width-2), "…"))
		if len(out) == previewLines {
			break
		}
	}
	subtle := styles.CurrentTheme().S().Subtle
	for n := range out {
		out[n] = subtle.Render(out[n])
	}
	return out
}

func (i *Item) expandedBody(width int) []string {
	rendered, ok := i.bodies[width]
	if !ok {
		rendered = renderMarkdown(i.body(), width)
		i.bodies[width] = rendered
	}
	if rendered == "" {
		return []string{"", styles.CurrentTheme().S().Muted.Render("  No content.")}
	}
	return append([]string{""}, strings.Split(rendered, "\n")...)
}

func renderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(glamourstyles.DarkStyleConfig),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
