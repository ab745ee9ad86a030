package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-parser/internal/archive"
	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/metrics"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/server"
	"github.com/jonathan/resume-parser/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort         int
	serveDatabaseURL  string
	serveStrictSkills bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that parses uploaded resumes at POST /api/parse-resume.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "Database URL for analysis history (overrides DATABASE_URL)")
	serveCmd.Flags().BoolVar(&serveStrictSkills, "strict-skills", false, "Match skill keywords on word boundaries only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(overrides{dbURL: serveDatabaseURL})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg, false)
	m := metrics.NewMetrics()

	analyzer, closeAnalyzer, err := buildAnalyzer(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	parser := resume.NewParser(analyzer, resume.Options{
		ModelID:    cfg.ModelID,
		SkillMatch: skillMatch(serveStrictSkills),
	}, log)

	srvCfg := server.Config{
		Port:          servePort,
		MaxConcurrent: cfg.MaxConcurrent,
		Parser:        parser,
		Metrics:       m,
		RateLimit:     ratelimit.ConfigFromEnv(),
		Logger:        log,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		srvCfg.Store = database
	}

	if cfg.Archive.Enabled() {
		store, err := archive.New(ctx, cfg.Archive, log)
		if err != nil {
			return fmt.Errorf("failed to open document archive: %w", err)
		}
		srvCfg.Archive = store
	} else {
		log.Debug().Msgf("document archive disabled, set %s to enable it", config.EnvMinIOEndpoint)
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
