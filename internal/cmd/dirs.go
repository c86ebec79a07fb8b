package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/lazyfeed/lazyfeed/internal/config"
	"github.com/spf13/cobra"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print directories used by lazyfeed",
	Long: `Print the directories where lazyfeed looks for configuration, and the
project data directory holding the entry database and logs.`,
	Example: heredoc.Doc(`
		# Print all directories
		lazyfeed dirs

		# Print only the global config directory
		lazyfeed dirs --config

		# Print only the project data directory
		lazyfeed dirs --data
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		configOnly, _ := cmd.Flags().GetBool("config")
		dataOnly, _ := cmd.Flags().GetBool("data")

		if configOnly && dataOnly {
			return fmt.Errorf("cannot specify both --config and --data flags")
		}

		configDir := filepath.Dir(config.GlobalConfig())
		cwd, err := resolveCwd(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd, false)
		if err != nil {
			return err
		}
		dataDir := cfg.Options.DataDirectory

		out := cmd.OutOrStdout()
		if configOnly {
			fmt.Fprintln(out, configDir)
			return nil
		}

		if dataOnly {
			fmt.Fprintln(out, dataDir)
			return nil
		}

		// Print both by default
		fmt.Fprintf(out, "Config directory: %s\n", configDir)
		fmt.Fprintf(out, "Data directory:   %s\n", dataDir)
		fmt.Fprintf(out, "Log file:         %s\n", cfg.LogFile())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().Bool("config", false, "Print only the global config directory")
	dirsCmd.Flags().Bool("data", false, "Print only the project data directory")
}
