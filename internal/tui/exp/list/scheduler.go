package list

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/lazyfeed/lazyfeed/internal/tui/exp/lazylist"
)

// FrameInterval is the delay used for frame callbacks.
const FrameInterval = time.Second / 60

// tickMsg resolves a scheduled callback. Messages for cancelled tokens are
// dropped when they arrive.
type tickMsg struct {
	list  int
	token lazylist.Token
}

// scheduler turns controller callbacks into tea.Tick commands. Commands are
// collected while the list handles a message and returned from Update.
type scheduler struct {
	list  int
	next  lazylist.Token
	tasks map[lazylist.Token]func()
	cmds  []tea.Cmd
}

func newScheduler(list int) *scheduler {
	return &scheduler{
		list:  list,
		tasks: make(map[lazylist.Token]func()),
	}
}

func (s *scheduler) RequestFrame(fn func()) lazylist.Token {
	return s.After(FrameInterval, fn)
}

func (s *scheduler) After(d time.Duration, fn func()) lazylist.Token {
	s.next++
	tok := s.next
	s.tasks[tok] = fn
	list := s.list
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{list: list, token: tok}
	}))
	return tok
}

func (s *scheduler) Cancel(tok lazylist.Token) {
	delete(s.tasks, tok)
}

// run executes the callback of tok, if it is still scheduled.
func (s *scheduler) run(tok lazylist.Token) bool {
	fn, ok := s.tasks[tok]
	if !ok {
		return false
	}
	delete(s.tasks, tok)
	fn()
	return true
}

func (s *scheduler) drain() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}
