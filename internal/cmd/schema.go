package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/lazyfeed/lazyfeed/internal/config"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for configuration",
	Long:   "Generate JSON schema for the lazyfeed configuration file",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(configSchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func configSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		// Fields are optional unless tagged required.
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(&config.Config{})
	schema.Title = "lazyfeed configuration"
	schema.Description = "Configuration of the lazyfeed reader, read from lazyfeed.json and .lazyfeed.json"
	return schema
}
