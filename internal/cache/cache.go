// Package cache stores document analysis results so that resubmitting the same
// document does not repeat the remote analysis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "resume-parser:analysis:"

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis server at rawURL (redis://[:password@]host:port/db).
func NewRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get returns the value stored at key, or ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value at key for ttl. A zero ttl keeps the key without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Options configures a CachingAnalyzer.
type Options struct {
	TTL    time.Duration
	Logger *zerolog.Logger
	// OnLookup is called after every cache lookup with whether it hit.
	OnLookup func(hit bool)
}

// CachingAnalyzer serves analysis results from a Store and falls back to the
// wrapped Analyzer on a miss. Cache failures never fail an analysis.
type CachingAnalyzer struct {
	next     docintel.Analyzer
	store    Store
	ttl      time.Duration
	log      zerolog.Logger
	onLookup func(hit bool)
}

// NewCachingAnalyzer wraps next with store.
func NewCachingAnalyzer(next docintel.Analyzer, store Store, opts Options) *CachingAnalyzer {
	a := &CachingAnalyzer{
		next:     next,
		store:    store,
		ttl:      opts.TTL,
		log:      zerolog.Nop(),
		onLookup: opts.OnLookup,
	}
	if opts.Logger != nil {
		a.log = opts.Logger.With().Str("component", "cache").Logger()
	}
	return a
}

// Key returns the cache key for a document analyzed with modelID.
func Key(modelID string, document []byte) string {
	sum := sha256.Sum256(document)
	return keyPrefix + modelID + ":" + hex.EncodeToString(sum[:])
}

// Analyze returns a cached result when available, otherwise analyzes the
// document and caches the result.
func (a *CachingAnalyzer) Analyze(ctx context.Context, modelID string, document []byte) (*docintel.AnalyzeResult, error) {
	if modelID == "" {
		modelID = docintel.DefaultModelID
	}
	key := Key(modelID, document)

	if result, ok := a.lookup(ctx, key); ok {
		return result, nil
	}

	result, err := a.next.Analyze(ctx, modelID, document)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to encode analysis for cache")
		return result, nil
	}
	if err := a.store.Set(ctx, key, payload, a.ttl); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache analysis")
	}
	return result, nil
}

// ListModels is never cached.
func (a *CachingAnalyzer) ListModels(ctx context.Context) ([]docintel.ModelSummary, error) {
	return a.next.ListModels(ctx)
}

func (a *CachingAnalyzer) lookup(ctx context.Context, key string) (*docintel.AnalyzeResult, bool) {
	payload, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			a.log.Warn().Err(err).Msg("cache lookup failed")
		}
		a.report(false)
		return nil, false
	}

	var result docintel.AnalyzeResult
	if err := json.Unmarshal(payload, &result); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		a.report(false)
		return nil, false
	}
	a.log.Debug().Str("key", key).Msg("analysis served from cache")
	a.report(true)
	return &result, true
}

func (a *CachingAnalyzer) report(hit bool) {
	if a.onLookup != nil {
		a.onLookup(hit)
	}
}
