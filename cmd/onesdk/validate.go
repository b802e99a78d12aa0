package main

import (
	"fmt"

	"github.com/onesdk/go-sdk/config"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <super.json>",
		Short: "Validate a super.json configuration file without performing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			super, err := config.Load[config.SuperConfig](args[0])
			if err != nil {
				return err
			}
			if err := config.ValidateSuperConfig(&super); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d profile(s), %d provider(s)\n", args[0], len(super.Profiles), len(super.Providers))
			return nil
		},
	}
}
