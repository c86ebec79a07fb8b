package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/lazyfeed/lazyfeed/internal/entry"
	"github.com/lazyfeed/lazyfeed/internal/layout"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Simulate the entry list layout",
	Long: heredoc.Doc(`
		Mount a list of uniform items without a terminal, scroll it and print
		which items stay rendered, with their positions and the blank space
		standing in for the rest.
	`),
	Example: heredoc.Doc(`
		# 1000 items of 200 lines in an 800 line viewport
		lazyfeed layout --items 1000 --item-height 200 --viewport 800 --assumed 200

		# Jump to the 500th item and print yaml
		lazyfeed layout --items 1000 --scroll-to 500 -f yaml

		# Start from the heights stored for an 80 column terminal
		lazyfeed layout --items 50 --width 80
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := layout.Options{}
		opts.Items, _ = flags.GetInt("items")
		opts.ItemHeight, _ = flags.GetFloat64("item-height")
		opts.Viewport, _ = flags.GetFloat64("viewport")
		opts.Assumed, _ = flags.GetFloat64("assumed")
		opts.Ratio, _ = flags.GetFloat64("ratio")
		opts.InitialIndex, _ = flags.GetInt("initial-index")
		opts.Offset, _ = flags.GetFloat64("offset")
		opts.ScrollTo, _ = flags.GetInt("scroll-to")
		format, _ := flags.GetString("format")

		if width, _ := flags.GetInt("width"); width > 0 {
			heights, err := storedHeights(cmd, width, opts.Items)
			if err != nil {
				return err
			}
			opts.InitialHeights = heights
		}

		res, err := layout.Simulate(opts)
		if err != nil {
			return err
		}
		return formatLayout(cmd.OutOrStdout(), res, format)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	flags := layoutCmd.Flags()
	flags.Int("items", 100, "Number of items")
	flags.Float64("item-height", 4, "Rendered height of every item")
	flags.Float64("viewport", 24, "Viewport height")
	flags.Float64("assumed", 4, "Height assumed for items not measured yet")
	flags.Float64("ratio", 1.8, "Offscreen content kept rendered, in viewport heights")
	flags.Int("initial-index", 0, "Item at the top of the viewport on mount")
	flags.Float64("offset", 0, "Lines to scroll after mounting")
	flags.Int("scroll-to", -1, "Item to scroll to after mounting")
	flags.Int("width", 0, "Seed the stored heights of this terminal width")
	flags.StringP("format", "f", "text", "Output format (text, json, yaml)")
}

// storedHeights maps the heights saved for width onto the simulated item
// ids, in list order.
func storedHeights(cmd *cobra.Command, width, items int) (map[string]float64, error) {
	_, entries, conn, err := openEntries(cmd)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stored, err := entries.LoadHeights(cmd.Context(), width)
	if err != nil {
		return nil, fmt.Errorf("failed to load heights for width %d: %w", width, err)
	}
	list, err := entries.List(cmd.Context(), entry.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	heights := make(map[string]float64)
	for i, e := range list {
		if i >= items {
			break
		}
		if h, ok := stored[e.ID]; ok {
			heights[layout.ItemID(i)] = h
		}
	}
	return heights, nil
}

func formatLayout(w io.Writer, res layout.Result, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(w, res)
	case "yaml":
		return formatYAML(w, res)
	case "text":
		fmt.Fprintf(w, "items:    %d (%g lines)\n", res.Items, res.TotalHeight)
		fmt.Fprintf(w, "viewport: %g-%g\n", res.Viewport.Top, res.Viewport.Bottom)
		fmt.Fprintf(w, "slice:    [%d, %d)\n", res.SliceStart, res.SliceEnd)
		fmt.Fprintf(w, "blank:    %g above, %g below\n", res.BlankAbove, res.BlankBelow)
		fmt.Fprintf(w, "tasks:    %d\n", res.Tasks)
		for _, m := range res.Mounted {
			fmt.Fprintf(w, "  %-12s %g-%g\n", m.ID, m.Top, m.Bottom)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
