package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/lazyfeed/lazyfeed/internal/config"
	"github.com/lazyfeed/lazyfeed/internal/db"
	"github.com/lazyfeed/lazyfeed/internal/entry"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/lazyfeed/lazyfeed/internal/log"
	"github.com/lazyfeed/lazyfeed/internal/tui"
	"github.com/lazyfeed/lazyfeed/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
}

var rootCmd = &cobra.Command{
	Use:   "lazyfeed",
	Short: "Terminal feed reader",
	Long:  "lazyfeed reads stream files in the terminal, rendering only the entries around the screen.",
	Example: heredoc.Doc(`
		# Run with the feeds configured in .lazyfeed.json
		lazyfeed

		# Run with debug logging
		lazyfeed -d

		# Run in a specific directory
		lazyfeed -c /path/to/project
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := resolveCwd(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")

		cfg, err := config.Init(cwd, debug)
		if err != nil {
			return err
		}
		log.Setup(cfg.LogFile(), cfg.Options.Debug)

		if !term.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("lazyfeed needs a terminal; use `lazyfeed entries list` for piped output")
		}

		ctx := cmd.Context()
		conn, err := db.Connect(ctx, cfg.Options.DataDirectory)
		if err != nil {
			return err
		}
		defer conn.Close()
		entries := entry.NewService(conn, db.New(conn))

		opts := tui.Options{}
		if width, _, err := term.GetSize(os.Stdout.Fd()); err == nil {
			opts.Width = width
			opts.Heights, err = entries.LoadHeights(ctx, width)
			if err != nil {
				slog.Warn("Failed to load item heights", "width", width, "error", err)
			}
		}
		if paths := cfg.FeedPaths(); len(paths) > 0 {
			watcher, err := feed.NewWatcher(paths)
			if err != nil {
				slog.Warn("Feed files will not be watched", "error", err)
			} else {
				defer watcher.Close()
				opts.Watcher = watcher
			}
		}

		program := tea.NewProgram(
			tui.New(ctx, cfg, entries, opts),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithMouseCellMotion(),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// resolveCwd returns the --cwd flag as an absolute path, or the process
// working directory.
func resolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", cwd, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", cwd)
	}
	return abs, nil
}

// openEntries loads the configuration and opens the entry store for the
// non-interactive commands.
func openEntries(cmd *cobra.Command) (*config.Config, entry.Service, *sql.DB, error) {
	cwd, err := resolveCwd(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := config.Init(cwd, debug)
	if err != nil {
		return nil, nil, nil, err
	}
	log.SetupConsole(cfg.Options.Debug)

	conn, err := db.Connect(cmd.Context(), cfg.Options.DataDirectory)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, entry.NewService(conn, db.New(conn)), conn, nil
}
