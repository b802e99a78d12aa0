package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "onesdk",
		Short:         "Invoke declarative use cases against configured providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPerformCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSchemaCmd())
	return root
}
