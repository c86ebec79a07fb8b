package list

import (
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lazyfeed/lazyfeed/internal/tui/exp/lazylist"
)

// Item is an entry of the list. Render must not produce lines wider than
// width.
type Item interface {
	ID() string
	Render(width int, selected bool) string
}

const (
	ItemNotFound              = -1
	ViewportDefaultScrollSize = 2
	// DefaultAssumedItemHeight is the line count used for items that were
	// never rendered at the current width.
	DefaultAssumedItemHeight = 4

	// upper bound of render and commit passes per message
	maxSettlePasses = 8
)

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

type confOptions struct {
	width, height int
	gap           int
	// if you are at the last item and go down it will wrap to the top
	wrap          bool
	keyMap        KeyMap
	selectedIndex int
	focused       bool
	enableMouse   bool
	lazyOptions   []lazylist.Option
	// measured heights by render width
	heights map[int]map[string]float64
	logger  *slog.Logger
}

type ListOption func(*confOptions)

// WithSize sets the size of the list.
func WithSize(width, height int) ListOption {
	return func(l *confOptions) {
		l.width = width
		l.height = height
	}
}

// WithGap sets the gap between items in the list.
func WithGap(gap int) ListOption {
	return func(l *confOptions) {
		l.gap = max(0, gap)
	}
}

// WithSelectedIndex sets the initially selected item in the list by index.
// The list starts scrolled to it.
func WithSelectedIndex(index int) ListOption {
	return func(l *confOptions) {
		l.selectedIndex = index
	}
}

func WithKeyMap(keyMap KeyMap) ListOption {
	return func(l *confOptions) {
		l.keyMap = keyMap
	}
}

func WithWrapNavigation() ListOption {
	return func(l *confOptions) {
		l.wrap = true
	}
}

func WithFocus(focus bool) ListOption {
	return func(l *confOptions) {
		l.focused = focus
	}
}

func WithEnableMouse() ListOption {
	return func(l *confOptions) {
		l.enableMouse = true
	}
}

// WithLazyOptions passes options to the underlying lazylist controller.
func WithLazyOptions(opts ...lazylist.Option) ListOption {
	return func(l *confOptions) {
		l.lazyOptions = append(l.lazyOptions, opts...)
	}
}

// WithInitialHeights seeds the heights measured at a render width.
func WithInitialHeights(width int, heights map[string]float64) ListOption {
	return func(l *confOptions) {
		if len(heights) == 0 {
			return
		}
		l.heights[width] = heights
	}
}

func WithLogger(logger *slog.Logger) ListOption {
	return func(l *confOptions) {
		l.logger = logger
	}
}

// measuredView is a rendered item as the controller measures it.
type measuredView string

func (v measuredView) Height() float64 {
	return float64(lipgloss.Height(string(v)))
}

// host exposes the list viewport to the controller. Offsets are in lines.
type host struct {
	offset int
	height int
	total  func() float64
	dirty  bool
}

func (h *host) ScrollOffset() float64   { return float64(h.offset) }
func (h *host) ViewportHeight() float64 { return float64(h.height) }
func (h *host) ListOffset() float64     { return 0 }
func (h *host) Invalidate()             { h.dirty = true }

func (h *host) maxOffset() int {
	if h.total == nil {
		return 0
	}
	return max(0, int(h.total())-h.height)
}

func (h *host) ScrollBy(dy float64) {
	h.offset = min(max(0, h.offset+int(dy)), h.maxOffset())
}

// List is a bubbletea component rendering a long list of variable height
// items. Only the items near the viewport are rendered; the rest of the
// list is blank space sized from measured or assumed heights.
type List[T Item] struct {
	*confOptions

	id    int
	host  *host
	sched *scheduler
	ctrl  *lazylist.Controller[T, string]

	items    []T
	indexMap map[string]int

	// output of the last render
	above, below int
	body         []string
}

func New[T Item](items []T, opts ...ListOption) *List[T] {
	id := nextID()
	l := &List[T]{
		confOptions: &confOptions{
			keyMap:  DefaultKeyMap(),
			focused: true,
			heights: make(map[int]map[string]float64),
			logger:  slog.Default(),
		},
		id:    id,
		host:  &host{},
		sched: newScheduler(id),
	}
	for _, opt := range opts {
		opt(l.confOptions)
	}
	l.setItems(items)
	l.selectedIndex = clamp(l.selectedIndex, len(items))
	return l
}

func clamp(index, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(0, index), n-1)
}

// Init mounts the list when it already has a size.
func (l *List[T]) Init() tea.Cmd {
	if l.ctrl == nil && l.width > 0 && l.height > 0 {
		l.mount()
	}
	return l.flush()
}

func (l *List[T]) mount() {
	l.host.height = l.height
	opts := []lazylist.Option{
		lazylist.WithAssumedItemHeight(DefaultAssumedItemHeight),
		lazylist.WithInitialItemIndex(l.selectedIndex),
		lazylist.WithInitialHeights(l.heights[l.width]),
		lazylist.WithLogger(l.logger),
	}
	opts = append(opts, l.lazyOptions...)
	ctrl := lazylist.New(l.host, l.items, lazylist.Config[T, string]{
		ID:         func(item T) string { return item.ID() },
		RenderItem: l.renderItem,
		RenderList: l.renderList,
	}, opts...)
	l.ctrl = ctrl
	l.host.total = func() float64 { return ctrl.Positioning().TotalHeight() }

	ctrl.Render()
	ctrl.Mount(l.sched)
	l.logger.Debug("List mounted", "items", len(l.items), "width", l.width, "height", l.height)
}

func (l *List[T]) unmount() {
	if l.ctrl == nil {
		return
	}
	l.heights[l.width] = l.ctrl.Heights()
	l.ctrl.Unmount()
	l.ctrl = nil
	l.host.total = nil
}

func (l *List[T]) renderItem(item T, index int, ref *lazylist.Ref) string {
	view := item.Render(l.width, l.focused && index == l.selectedIndex)
	if l.gap > 0 && index < len(l.items)-1 {
		view += strings.Repeat("\n", l.gap)
	}
	ref.Bind(measuredView(view))
	return view
}

func (l *List[T]) renderList(items []string, above, below float64) string {
	l.above, l.below = int(above), int(below)
	if len(items) == 0 {
		l.body = nil
		return ""
	}
	rendered := strings.Join(items, "\n")
	l.body = strings.Split(rendered, "\n")
	return rendered
}

// settle renders and commits until the controller stops asking for a
// render.
func (l *List[T]) settle() {
	if l.ctrl == nil {
		return
	}
	for range maxSettlePasses {
		if !l.host.dirty {
			return
		}
		l.host.dirty = false
		l.ctrl.Render()
		l.ctrl.Commit()
	}
	l.logger.Debug("List did not settle", "passes", maxSettlePasses)
}

func (l *List[T]) flush() tea.Cmd {
	l.settle()
	return l.sched.drain()
}

// Update handles keys, mouse wheel events and the list's own ticks.
func (l *List[T]) Update(msg tea.Msg) (*List[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.list != l.id {
			return l, nil
		}
		l.sched.run(msg.token)
		return l, l.flush()
	case tea.MouseWheelMsg:
		if l.enableMouse {
			return l, l.handleMouseWheel(msg)
		}
		return l, nil
	case tea.KeyPressMsg:
		if !l.focused {
			return l, nil
		}
		switch {
		case key.Matches(msg, l.keyMap.Down):
			return l, l.SelectItemBelow()
		case key.Matches(msg, l.keyMap.Up):
			return l, l.SelectItemAbove()
		case key.Matches(msg, l.keyMap.LineDown):
			return l, l.MoveDown(1)
		case key.Matches(msg, l.keyMap.LineUp):
			return l, l.MoveUp(1)
		case key.Matches(msg, l.keyMap.HalfPageDown):
			return l, l.MoveDown(l.height / 2)
		case key.Matches(msg, l.keyMap.HalfPageUp):
			return l, l.MoveUp(l.height / 2)
		case key.Matches(msg, l.keyMap.PageDown):
			return l, l.MoveDown(l.height)
		case key.Matches(msg, l.keyMap.PageUp):
			return l, l.MoveUp(l.height)
		case key.Matches(msg, l.keyMap.End):
			return l, l.GoToBottom()
		case key.Matches(msg, l.keyMap.Home):
			return l, l.GoToTop()
		}
	}
	return l, nil
}

func (l *List[T]) handleMouseWheel(msg tea.MouseWheelMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseWheelDown:
		return l.MoveDown(ViewportDefaultScrollSize)
	case tea.MouseWheelUp:
		return l.MoveUp(ViewportDefaultScrollSize)
	}
	return nil
}

// View crops the rendered slice and the blank space around it to the
// viewport.
func (l *List[T]) View() string {
	if l.ctrl == nil || l.height <= 0 || l.width <= 0 {
		return ""
	}
	total := l.above + len(l.body) + l.below
	lines := make([]string, 0, l.height)
	for y := l.host.offset; y < l.host.offset+l.height && y < total; y++ {
		if y < l.above || y >= l.above+len(l.body) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, l.body[y-l.above])
	}
	return strings.Join(lines, "\n")
}

// scrollBy moves the viewport and lets the controller follow.
func (l *List[T]) scrollBy(dy int) bool {
	if l.ctrl == nil || dy == 0 {
		return false
	}
	prev := l.host.offset
	l.host.ScrollBy(float64(dy))
	if l.host.offset == prev {
		return false
	}
	l.ctrl.HandleScroll()
	return true
}

// MoveDown scrolls n lines down and keeps the selection on screen.
func (l *List[T]) MoveDown(n int) tea.Cmd {
	if l.scrollBy(n) {
		l.changeSelectionWhenScrolling()
	}
	return l.flush()
}

// MoveUp scrolls n lines up and keeps the selection on screen.
func (l *List[T]) MoveUp(n int) tea.Cmd {
	if l.scrollBy(-n) {
		l.changeSelectionWhenScrolling()
	}
	return l.flush()
}

// changeSelectionWhenScrolling selects the first visible item once the
// selected item left the viewport.
func (l *List[T]) changeSelectionWhenScrolling() {
	if len(l.items) == 0 {
		return
	}
	pos := l.ctrl.Positioning()
	vp := pos.Viewport.Rectangle()
	if l.selectedIndex < len(pos.Rectangles) && lazylist.Intersects(pos.Rectangles[l.selectedIndex], vp) {
		return
	}
	first := sort.Search(len(pos.Rectangles), func(i int) bool {
		return pos.Rectangles[i].Bottom > vp.Top
	})
	if first < len(l.items) {
		l.selectedIndex = first
		l.host.Invalidate()
	}
}

// ensureVisible scrolls the least amount that shows item i in full, or its
// top when it is taller than the viewport.
func (l *List[T]) ensureVisible(i int) {
	if l.ctrl == nil {
		return
	}
	start, end := l.ctrl.Slice()
	if i < start || i >= end {
		l.ctrl.ScrollToIndex(i)
		return
	}
	pos := l.ctrl.Positioning()
	r, vp := pos.Rectangles[i], pos.Viewport
	switch {
	case r.Top < vp.Top || r.Height() > vp.Bottom-vp.Top:
		l.scrollBy(int(r.Top - vp.Top))
	case r.Bottom > vp.Bottom:
		l.scrollBy(int(r.Bottom - vp.Bottom))
	}
}

func (l *List[T]) selectIndex(i int) tea.Cmd {
	if i == l.selectedIndex {
		return nil
	}
	l.selectedIndex = i
	l.host.Invalidate()
	l.ensureVisible(i)
	return l.flush()
}

// SelectItemAbove selects the previous item.
func (l *List[T]) SelectItemAbove() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	i := l.selectedIndex - 1
	if i < 0 {
		if !l.wrap {
			return nil
		}
		i = len(l.items) - 1
	}
	return l.selectIndex(i)
}

// SelectItemBelow selects the next item.
func (l *List[T]) SelectItemBelow() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	i := l.selectedIndex + 1
	if i >= len(l.items) {
		if !l.wrap {
			return nil
		}
		i = 0
	}
	return l.selectIndex(i)
}

// GoToTop selects the first item.
func (l *List[T]) GoToTop() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	l.selectedIndex = 0
	l.host.Invalidate()
	if l.ctrl != nil {
		l.ctrl.ScrollToIndex(0)
	}
	return l.flush()
}

// GoToBottom selects the last item.
func (l *List[T]) GoToBottom() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	l.selectedIndex = len(l.items) - 1
	l.host.Invalidate()
	if l.ctrl != nil {
		l.ctrl.ScrollToIndex(l.selectedIndex)
	}
	return l.flush()
}

// SetSelected selects the item with the given id.
func (l *List[T]) SetSelected(id string) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	return l.selectIndex(inx)
}

// SelectedItem returns the selected item, or nil for an empty list.
func (l *List[T]) SelectedItem() *T {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		return nil
	}
	return &l.items[l.selectedIndex]
}

func (l *List[T]) SelectedIndex() int {
	return l.selectedIndex
}

func (l *List[T]) Items() []T {
	return l.items
}

func (l *List[T]) setItems(items []T) {
	l.items = items
	l.indexMap = make(map[string]int, len(items))
	for inx, item := range items {
		l.indexMap[item.ID()] = inx
	}
}

// SetItems replaces the items. The selection follows the selected item when
// it is still present.
func (l *List[T]) SetItems(items []T) tea.Cmd {
	var selectedID string
	if s := l.SelectedItem(); s != nil {
		selectedID = (*s).ID()
	}
	l.setItems(items)
	if inx, ok := l.indexMap[selectedID]; ok {
		l.selectedIndex = inx
	} else {
		l.selectedIndex = 0
	}
	if l.ctrl == nil {
		return nil
	}
	l.ctrl.SetItems(items)
	l.settle()
	if len(l.items) > 0 {
		l.ensureVisible(l.selectedIndex)
	}
	return l.flush()
}

// UpdateItem replaces the item with the given id and renders it again. A
// changed height keeps the items below the viewport from moving it.
func (l *List[T]) UpdateItem(id string, item T) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	items := make([]T, len(l.items))
	copy(items, l.items)
	items[inx] = item
	l.items = items
	if l.ctrl == nil {
		return nil
	}
	l.ctrl.SetItems(items)
	return l.flush()
}

// SetSize resizes the list. A new width invalidates every measured height,
// so the list is mounted again with the heights known for that width.
func (l *List[T]) SetSize(width, height int) tea.Cmd {
	if width == l.width && height == l.height && l.ctrl != nil {
		return nil
	}
	if width != l.width || width <= 0 || height <= 0 {
		l.unmount()
	}
	l.width, l.height = width, height
	if width <= 0 || height <= 0 {
		return nil
	}
	if l.ctrl == nil {
		l.mount()
		return l.flush()
	}
	l.host.height = height
	l.host.offset = min(l.host.offset, l.host.maxOffset())
	l.ctrl.HandleResize()
	return l.flush()
}

func (l *List[T]) GetSize() (int, int) {
	return l.width, l.height
}

func (l *List[T]) Focus() tea.Cmd {
	l.focused = true
	l.host.Invalidate()
	return l.flush()
}

func (l *List[T]) Blur() tea.Cmd {
	l.focused = false
	l.host.Invalidate()
	return l.flush()
}

func (l *List[T]) IsFocused() bool {
	return l.focused
}

func (l *List[T]) KeyMap() KeyMap {
	return l.keyMap
}

// Heights returns the heights measured at the current width.
func (l *List[T]) Heights() (int, map[string]float64) {
	if l.ctrl != nil {
		return l.width, l.ctrl.Heights()
	}
	return l.width, l.heights[l.width]
}

// SeedHeights records heights measured at width in an earlier run. They are
// used the next time the list mounts at that width; heights the list already
// knows win.
func (l *List[T]) SeedHeights(width int, heights map[string]float64) {
	if width <= 0 || len(heights) == 0 || (l.ctrl != nil && width == l.width) {
		return
	}
	known := l.heights[width]
	merged := make(map[string]float64, len(heights)+len(known))
	for id, h := range heights {
		merged[id] = h
	}
	for id, h := range known {
		merged[id] = h
	}
	l.heights[width] = merged
}

// Offset returns the scroll offset in lines.
func (l *List[T]) Offset() int {
	return l.host.offset
}

// Positioning returns the controller's current layout.
func (l *List[T]) Positioning() (lazylist.Snapshot, bool) {
	if l.ctrl == nil {
		return lazylist.Snapshot{}, false
	}
	return l.ctrl.Positioning(), true
}

// Close cancels pending list work.
func (l *List[T]) Close() {
	l.unmount()
}
