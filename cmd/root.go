package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thisisdope/dlt/internal/schema"
)

var schemaPath string

var rootCmd = &cobra.Command{
	Use:   "dlt",
	Short: "Normalize nested JSON documents into flat, linked relational tables",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "Path to schema config (.json or .hcl)")
}

// loadSchema resolves the schema for a command invocation: the configured
// file when --schema is set, otherwise an empty schema named fallbackName.
func loadSchema(fallbackName string) (*schema.Schema, error) {
	if schemaPath != "" {
		return schema.LoadFile(schemaPath)
	}
	return schema.New(fallbackName), nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
