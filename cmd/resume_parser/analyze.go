package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jonathan/resume-parser/internal/archive"
	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume document and print the extracted information",
	Long: "Analyze a resume with Azure Form Recognizer. Prints recognized fields, key-value pairs and tables, " +
		"then the contact details, skills and experience and education excerpts found in the text.",
	RunE: runAnalyze,
}

var (
	analyzeFile         string
	analyzeModel        string
	analyzeEndpoint     string
	analyzeKey          string
	analyzeDatabaseURL  string
	analyzeStrictSkills bool
	analyzeJSON         bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Resume document to analyze (default "+config.DefaultFile+")")
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "Analysis model id (overrides AZURE_FORM_RECOGNIZER_MODEL)")
	analyzeCmd.Flags().StringVar(&analyzeEndpoint, "endpoint", "", "Service endpoint (overrides AZURE_FORM_RECOGNIZER_ENDPOINT)")
	analyzeCmd.Flags().StringVar(&analyzeKey, "key", "", "Service key (overrides AZURE_FORM_RECOGNIZER_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "Database URL to store the analysis (overrides DATABASE_URL)")
	analyzeCmd.Flags().BoolVar(&analyzeStrictSkills, "strict-skills", false, "Match skill keywords on word boundaries only")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON instead of the report")

	rootCmd.AddCommand(analyzeCmd)
}

func skillMatch(strict bool) extraction.MatchMode {
	if strict {
		return extraction.MatchWordBoundary
	}
	return extraction.MatchSubstring
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())

	cfg, err := resolveConfig(overrides{
		endpoint: analyzeEndpoint,
		key:      analyzeKey,
		model:    analyzeModel,
		file:     analyzeFile,
		dbURL:    analyzeDatabaseURL,
	})
	if err != nil {
		return err
	}
	log := newLogger(cfg, true)

	printer.PrintConnection(cfg.Endpoint, cfg.APIKey != "")
	if err := cfg.Validate(); err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			printer.PrintFailure(resume.HandleFailure(ctx, nil, err))
			return &reportedError{err: err}
		}
		return err
	}

	analyzer, closeAnalyzer, err := buildAnalyzer(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	parser := resume.NewParser(analyzer, resume.Options{
		ModelID:    cfg.ModelID,
		SkillMatch: skillMatch(analyzeStrictSkills),
	}, log)

	printer.PrintAnalysisStarted()
	data, err := parser.ParseFile(ctx, cfg.File)
	if err != nil {
		// reported like the original tool: diagnostic on stdout, exit status 0
		printer.PrintFailure(resume.HandleFailure(ctx, analyzer, err))
		return nil
	}
	printer.PrintAnalysisCompleted()

	if analyzeJSON {
		if err := writeJSON(cmd.OutOrStdout(), data); err != nil {
			return err
		}
	} else {
		printer.PrintReport(data)
	}

	persistAnalysis(ctx, cfg, log, printer, data)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// persistAnalysis stores data in the database and archives the document when
// those services are configured. Failures are logged and never change the
// outcome of the command.
func persistAnalysis(ctx context.Context, cfg config.Config, log zerolog.Logger, printer *observability.Printer, data *types.ResumeData) {
	if cfg.DatabaseURL != "" {
		if err := storeAnalysis(ctx, cfg.DatabaseURL, data); err != nil {
			log.Warn().Err(err).Msg("analysis was not stored")
		} else {
			printer.PrintSummary(data)
		}
	}

	if cfg.Archive.Enabled() {
		if err := archiveAnalysis(ctx, cfg, log, data); err != nil {
			log.Warn().Err(err).Msg("document was not archived")
		}
	}
}

func storeAnalysis(ctx context.Context, databaseURL string, data *types.ResumeData) error {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	return database.SaveAnalysis(ctx, data)
}

func archiveAnalysis(ctx context.Context, cfg config.Config, log zerolog.Logger, data *types.ResumeData) error {
	document, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	store, err := archive.New(ctx, cfg.Archive, log)
	if err != nil {
		return err
	}
	key, err := store.PutDocument(ctx, data.ID, data.FileName, http.DetectContentType(document), document)
	if err != nil {
		return err
	}
	if _, err := store.PutResult(ctx, data); err != nil {
		return err
	}
	log.Info().Str("key", key).Msg("document archived")
	return nil
}
