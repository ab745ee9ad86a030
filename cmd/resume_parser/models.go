package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the analysis models available to the configured resource",
	RunE:  runModels,
}

var (
	modelsEndpoint string
	modelsKey      string
)

func init() {
	modelsCmd.Flags().StringVar(&modelsEndpoint, "endpoint", "", "Service endpoint (overrides AZURE_FORM_RECOGNIZER_ENDPOINT)")
	modelsCmd.Flags().StringVar(&modelsKey, "key", "", "Service key (overrides AZURE_FORM_RECOGNIZER_KEY)")

	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())

	cfg, err := resolveConfig(overrides{endpoint: modelsEndpoint, key: modelsKey})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			printer.PrintFailure(resume.HandleFailure(ctx, nil, err))
			return &reportedError{err: err}
		}
		return err
	}

	log := newLogger(cfg, true)
	analyzer, closeAnalyzer, err := buildAnalyzer(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	models, err := analyzer.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("could not list models: %w", err)
	}
	printer.PrintModels(models)
	return nil
}
