package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup sends the default logger to a rotating JSON log file. The TUI owns
// the terminal, so nothing is written to stdout or stderr.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		logRotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // Max size in MB
			MaxBackups: 0,
			MaxAge:     30, // Days
			Compress:   false,
		}

		slog.SetDefault(slog.New(NewFileHandler(logRotator, debug)))
		initialized.Store(true)
	})
}

// SetupConsole sends the default logger to stderr, for commands that do not
// start the TUI.
func SetupConsole(debug bool) {
	slog.SetDefault(slog.New(NewConsoleHandler(os.Stderr, debug)))
}

// NewFileHandler returns the JSON handler used for log files.
func NewFileHandler(w io.Writer, debug bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level(debug),
		AddSource: true,
	})
}

// NewConsoleHandler returns a human readable handler.
func NewConsoleHandler(w io.Writer, debug bool) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level(debug)),
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "lazyfeed",
	})
}

func level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic logs a panic with its stack and runs cleanup. Use it deferred
// at the top of goroutines.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		slog.Error(fmt.Sprintf("Panic in %s", name), "error", r, "stack", string(debug.Stack()))
		if cleanup != nil {
			cleanup()
		}
	}
}
