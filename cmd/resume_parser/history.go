package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show or delete stored analyses",
	RunE:  runHistory,
}

var (
	historyDatabaseURL string
	historyLimit       int
	historyShow        string
	historyDelete      string
	historyJSON        bool
)

func init() {
	historyCmd.Flags().StringVar(&historyDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", db.DefaultListLimit, "Maximum number of analyses to list")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Print the stored analysis with this id")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "Delete the stored analysis with this id")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(historyCmd)
}

// analysisStore is the part of *db.DB used by the history and export commands.
type analysisStore interface {
	GetAnalysis(ctx context.Context, id uuid.UUID) (*types.ResumeData, error)
	ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) (bool, error)
	Close()
}

// openStore connects to the analysis database. Tests replace it.
var openStore = func(ctx context.Context, databaseURL string) (analysisStore, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return database, nil
}

func connectStore(ctx context.Context, flagURL string) (analysisStore, error) {
	cfg, err := resolveConfig(overrides{dbURL: flagURL})
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
	}
	return openStore(ctx, cfg.DatabaseURL)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if historyShow != "" && historyDelete != "" {
		return fmt.Errorf("cannot use --show with --delete")
	}

	store, err := connectStore(ctx, historyDatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	switch {
	case historyShow != "":
		id, err := uuid.Parse(historyShow)
		if err != nil {
			return fmt.Errorf("invalid analysis id %q: %w", historyShow, err)
		}
		data, err := store.GetAnalysis(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load analysis: %w", err)
		}
		if data == nil {
			return fmt.Errorf("analysis not found: %s", id)
		}
		if historyJSON {
			return writeJSON(out, data)
		}
		printer.PrintReport(data)

	case historyDelete != "":
		id, err := uuid.Parse(historyDelete)
		if err != nil {
			return fmt.Errorf("invalid analysis id %q: %w", historyDelete, err)
		}
		deleted, err := store.DeleteAnalysis(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete analysis: %w", err)
		}
		if !deleted {
			return fmt.Errorf("analysis not found: %s", id)
		}
		_, _ = fmt.Fprintf(out, "Deleted analysis %s\n", id)

	default:
		summaries, err := store.ListAnalyses(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}
		if historyJSON {
			return writeJSON(out, summaries)
		}
		printer.PrintHistory(summaries)
	}
	return nil
}
