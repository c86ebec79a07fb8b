package notification

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const sendTimeout = 5 * time.Second

// SendFunc delivers a single notification.
type SendFunc func(ctx context.Context, title, message string) error

// Notifier sends native desktop notifications about new entries.
type Notifier struct {
	enabled bool
	send    SendFunc
}

type Option func(*Notifier)

// WithSender replaces the platform notification command.
func WithSender(fn SendFunc) Option {
	return func(n *Notifier) {
		n.send = fn
	}
}

func New(enabled bool, opts ...Option) *Notifier {
	n := &Notifier{
		enabled: enabled,
		send:    sendNative,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled
}

// NotifyNewEntries announces count new unread entries. The notification is
// sent in the background; failures are only logged.
func (n *Notifier) NotifyNewEntries(ctx context.Context, count int, titles []string) {
	if !n.Enabled() || count <= 0 {
		return
	}
	title, message := newEntriesText(count, titles)
	slog.Debug("Sending notification", "title", title, "message", message)
	go func() {
		if err := n.send(ctx, title, message); err != nil {
			slog.Warn("Failed to send notification", "error", err, "title", title)
		}
	}()
}

func newEntriesText(count int, titles []string) (string, string) {
	title := "1 new entry"
	if count > 1 {
		title = fmt.Sprintf("%d new entries", count)
	}
	const shown = 3
	message := strings.Join(titles[:min(shown, len(titles))], "\n")
	if len(titles) > shown {
		message += fmt.Sprintf("\nand %d more", len(titles)-shown)
	}
	return title, message
}

func sendNative(ctx context.Context, title, message string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	name, args, err := command(runtime.GOOS, title, message)
	if err != nil {
		return err
	}
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", name, err, string(output))
	}
	return nil
}

// command returns the program and arguments showing a notification on goos.
func command(goos, title, message string) (string, []string, error) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		return "osascript", []string{"-e", script}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"--app-name=lazyfeed", title, message}, nil
	case "windows":
		return "msg", []string{"*", fmt.Sprintf("%s: %s", title, message)}, nil
	default:
		return "", nil, fmt.Errorf("notifications not supported on %s", goos)
	}
}

func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
