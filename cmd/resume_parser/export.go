package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/export"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write analyses to an Excel workbook",
	Long: "Write analyses to an XLSX workbook with sheets for analyses, skills and section excerpts. " +
		"Reads stored analyses from the database, or JSON files written by 'analyze --json' when --input is given.",
	RunE: runExport,
}

var (
	exportOut         string
	exportInputs      []string
	exportDatabaseURL string
	exportLimit       int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Path of the XLSX file to write (required)")
	exportCmd.Flags().StringSliceVarP(&exportInputs, "input", "i", nil, "Analysis JSON files to export instead of the database")
	exportCmd.Flags().StringVar(&exportDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", db.DefaultListLimit, "Maximum number of stored analyses to export")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		results []*types.ResumeData
		err     error
	)
	if len(exportInputs) > 0 {
		results, err = readAnalysisFiles(exportInputs)
	} else {
		results, err = loadStoredAnalyses(ctx)
	}
	if err != nil {
		return err
	}

	workbook, err := export.Workbook(results)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	if err := os.WriteFile(exportOut, workbook, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d analyses to %s\n", len(results), exportOut)
	return nil
}

func readAnalysisFiles(paths []string) ([]*types.ResumeData, error) {
	results := make([]*types.ResumeData, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var data types.ResumeData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		results = append(results, &data)
	}
	return results, nil
}

func loadStoredAnalyses(ctx context.Context) ([]*types.ResumeData, error) {
	store, err := connectStore(ctx, exportDatabaseURL)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	summaries, err := store.ListAnalyses(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	results := make([]*types.ResumeData, 0, len(summaries))
	for _, s := range summaries {
		data, err := store.GetAnalysis(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load analysis %s: %w", s.ID, err)
		}
		if data != nil {
			results = append(results, data)
		}
	}
	return results, nil
}
