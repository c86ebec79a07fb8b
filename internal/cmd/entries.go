package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/lazyfeed/lazyfeed/internal/entry"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage entries",
	Long:  `Import stream files and list or export the stored entries`,
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import stream files",
	Long:  `Import one or more stream JSON files into the entry database`,
	Example: heredoc.Doc(`
		# Import a single stream
		lazyfeed entries import go.json
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, entries, conn, err := openEntries(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		for _, path := range args {
			stream, err := feed.LoadFile(path)
			if err != nil {
				return err
			}
			imported, err := entries.Import(cmd.Context(), stream)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", len(imported), path)
		}
		return nil
	},
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries",
	Long:  `List the stored entries, newest first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		items, err := listEntries(cmd)
		if err != nil {
			return err
		}
		return formatEntries(cmd.OutOrStdout(), items, format)
	},
}

var entriesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries",
	Long:  `Export the stored entries with their content`,
	Example: heredoc.Doc(`
		# Export pinned entries as markdown
		lazyfeed entries export --pinned --format markdown > pinned.md
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		items, err := listEntries(cmd)
		if err != nil {
			return err
		}
		return formatEntries(cmd.OutOrStdout(), items, format)
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd)
	entriesCmd.AddCommand(importCmd)
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesExportCmd)

	for _, c := range []*cobra.Command{entriesListCmd, entriesExportCmd} {
		c.Flags().Bool("unread", false, "Only unread entries")
		c.Flags().Bool("pinned", false, "Only pinned entries")
	}
	entriesListCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	entriesExportCmd.Flags().StringP("format", "f", "json", "Export format (json, yaml, markdown)")
}

func listEntries(cmd *cobra.Command) ([]feed.Entry, error) {
	_, entries, conn, err := openEntries(cmd)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	unread, _ := cmd.Flags().GetBool("unread")
	pinned, _ := cmd.Flags().GetBool("pinned")
	items, err := entries.List(cmd.Context(), entry.ListOptions{UnreadOnly: unread, PinnedOnly: pinned})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return items, nil
}

func formatEntries(w io.Writer, entries []feed.Entry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(w, entries)
	case "yaml":
		return formatYAML(w, entries)
	case "markdown", "md":
		return formatMarkdown(w, entries)
	case "text":
		return formatText(w, entries)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func formatYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Fprint(w, string(data))
	return nil
}

func formatText(w io.Writer, entries []feed.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s %s (%s, %s)\n", entryMarker(e), e.Title, e.ID, formatTimestamp(e.Published))
	}
	unread := lo.CountBy(entries, func(e feed.Entry) bool { return e.Unread })
	fmt.Fprintf(w, "\n%d entries, %d unread\n", len(entries), unread)
	return nil
}

func formatMarkdown(w io.Writer, entries []feed.Entry) error {
	fmt.Fprintln(w, "# Entries")
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(w, "## %s\n\n", e.Title)
		if e.URL != "" {
			fmt.Fprintf(w, "- **URL**: %s\n", e.URL)
		}
		if e.Origin != "" {
			fmt.Fprintf(w, "- **Feed**: %s\n", e.Origin)
		}
		if e.Author != "" {
			fmt.Fprintf(w, "- **Author**: %s\n", e.Author)
		}
		fmt.Fprintf(w, "- **Published**: %s\n", formatTimestamp(e.Published))
		fmt.Fprintln(w)
		if body := e.Markdown(); body != "" {
			fmt.Fprintf(w, "%s\n\n", body)
		}
	}
	return nil
}

func entryMarker(e feed.Entry) string {
	switch {
	case e.Pinned:
		return "★"
	case e.Unread:
		return "●"
	default:
		return "•"
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
