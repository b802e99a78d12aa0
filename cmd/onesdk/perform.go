package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/onesdk/go-sdk/config"
	"github.com/onesdk/go-sdk/interceptor"
	"github.com/onesdk/go-sdk/o11y"
	"github.com/onesdk/go-sdk/sdk"
	"github.com/spf13/cobra"
)

func newPerformCmd() *cobra.Command {
	var configPath, provider, inputJSON, logLevel string

	cmd := &cobra.Command{
		Use:   "perform <profile> <useCase>",
		Short: "Perform a use case against a profile's configured providers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, useCase := args[0], args[1]

			super, err := config.Load[config.SuperConfig](configPath)
			if err != nil {
				return err
			}
			if err := config.ValidateSuperConfig(&super); err != nil {
				return err
			}

			client, err := buildClient(configPath, profile, super)
			if err != nil {
				return err
			}

			logger := o11y.NewLogger(o11y.WithLogLevel(logLevel))
			client.Engine().On("success", interceptor.Options{}, func(ctx interceptor.Context, _ any) {
				logger.Info(cmd.Context(), "use case succeeded", "profile", ctx.Profile, "useCase", ctx.UseCase, "provider", ctx.Provider)
			})
			client.Engine().On("failure", interceptor.Options{}, func(ctx interceptor.Context, _ any) {
				logger.Error(cmd.Context(), "use case failed", "profile", ctx.Profile, "useCase", ctx.UseCase, "provider", ctx.Provider)
			})
			client.Engine().On("provider-switch", interceptor.Options{}, func(ctx interceptor.Context, payload any) {
				logger.Warn(cmd.Context(), "switched provider", "profile", ctx.Profile, "useCase", ctx.UseCase, "to", payload)
			})

			input, err := parseInput(inputJSON)
			if err != nil {
				return err
			}

			result := client.Perform(context.Background(), sdk.PerformRequest{
				Profile:  profile,
				UseCase:  useCase,
				Provider: provider,
				Input:    input,
			})

			value, performErr := result.Unwrap()
			if performErr != nil {
				return performErr
			}
			return printJSON(cmd.OutOrStdout(), value)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "super.json", "path to the super.json configuration file")
	cmd.Flags().StringVar(&provider, "provider", "", "pin execution to this provider, disabling failover")
	cmd.Flags().StringVar(&inputJSON, "input", "{}", "JSON input for the use case, or @path to read from a file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func parseInput(raw string) (any, error) {
	data := []byte(raw)
	if len(raw) > 0 && raw[0] == '@' {
		f, err := os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("onesdk: read input file: %w", err)
		}
		data = f
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("onesdk: parse input: %w", err)
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
