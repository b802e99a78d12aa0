package main

import (
	"github.com/onesdk/go-sdk/config"
	"github.com/onesdk/go-sdk/internal/jsonutil"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the super.json configuration shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := jsonutil.GenerateSchema(config.SuperConfig{})
			return printJSON(cmd.OutOrStdout(), schema)
		},
	}
}
