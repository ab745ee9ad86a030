package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-parser/internal/cache"
	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/jonathan/resume-parser/internal/logger"
	"github.com/jonathan/resume-parser/internal/metrics"
	"github.com/rs/zerolog"
)

// overrides are per-command flag values that take precedence over the config
// file and the environment. Empty values are ignored.
type overrides struct {
	endpoint string
	key      string
	model    string
	file     string
	dbURL    string
}

// resolveConfig layers flags over the config file over the environment.
func resolveConfig(o overrides) (config.Config, error) {
	cfg := config.FromEnv()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Endpoint, o.endpoint)
	set(&cfg.APIKey, o.key)
	set(&cfg.ModelID, o.model)
	set(&cfg.File, o.file)
	set(&cfg.DatabaseURL, o.dbURL)
	set(&cfg.LogLevel, logLevel)
	return cfg, nil
}

func newLogger(cfg config.Config, pretty bool) zerolog.Logger {
	return logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  pretty,
		Service: "resume_parser",
	})
}

// newAnalyzer builds the analysis service client. Tests replace it.
var newAnalyzer = func(cfg config.Config, log zerolog.Logger) (docintel.Analyzer, error) {
	client, err := docintel.NewClient(docintel.Options{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.Timeout,
		Logger:     &log,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// buildAnalyzer creates the analyzer for cfg, records its calls in m when m is
// set and puts the Redis result cache in front of it when REDIS_URL is set.
// An unreachable cache is logged and skipped. The returned function releases
// the cache connection.
func buildAnalyzer(ctx context.Context, cfg config.Config, log zerolog.Logger, m *metrics.Metrics) (docintel.Analyzer, func(), error) {
	analyzer, err := newAnalyzer(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analysis client: %w", err)
	}
	if m != nil {
		analyzer = metrics.InstrumentAnalyzer(analyzer, m)
	}

	noop := func() {}
	if cfg.RedisURL == "" {
		return analyzer, noop, nil
	}
	store, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("result cache unavailable, continuing without it")
		return analyzer, noop, nil
	}

	opts := cache.Options{TTL: cfg.CacheTTL, Logger: &log}
	if m != nil {
		opts.OnLookup = m.RecordCacheLookup
	}
	return cache.NewCachingAnalyzer(analyzer, store, opts), func() { _ = store.Close() }, nil
}
