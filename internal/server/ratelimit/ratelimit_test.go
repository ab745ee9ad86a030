package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cfg.Enabled = true
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestBucket_BurstThenDeny(t *testing.T) {
	now := time.Now()
	b := newBucket(3, 1, now)

	for i := 0; i < 3; i++ {
		ok, _, _ := b.take(now)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, remaining, full := b.take(now)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(3*time.Second), full)
}

func TestBucket_Refill(t *testing.T) {
	now := time.Now()
	b := newBucket(2, 1, now)
	b.take(now)
	b.take(now)

	ok, _, _ := b.take(now.Add(1100 * time.Millisecond))
	assert.True(t, ok)
	ok, _, _ = b.take(now.Add(1200 * time.Millisecond))
	assert.False(t, ok)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(Config{DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		info := l.Allow("10.0.0.1", "GET", "/api/analyses")
		require.True(t, info.Allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
		assert.Equal(t, 4-i, info.Remaining)
	}

	info := l.Allow("10.0.0.1", "GET", "/api/analyses")
	assert.False(t, info.Allowed)
	assert.Equal(t, 12*time.Second, info.RetryAfter)

	// other clients have their own bucket
	assert.True(t, l.Allow("10.0.0.2", "GET", "/api/analyses").Allowed)
}

func TestLimiter_RuleLimitsParse(t *testing.T) {
	l, clock := newTestLimiter(Config{DefaultLimit: 100, DefaultWindow: time.Minute, Rules: DefaultRules()})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("c", "POST", "/api/parse-resume").Allowed)
	}
	info := l.Allow("c", "POST", "/api/parse-resume")
	assert.False(t, info.Allowed)
	assert.Equal(t, 30, info.Limit)

	clock.Advance(3 * time.Minute)
	assert.True(t, l.Allow("c", "POST", "/api/parse-resume").Allowed)
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(Config{
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules:         []Rule{{Method: "DELETE", Path: "/api/analyses/", Limit: 2, Window: time.Minute}},
	})
	defer l.Stop()

	assert.True(t, l.Allow("c", "DELETE", "/api/analyses/1").Allowed)
	assert.True(t, l.Allow("c", "DELETE", "/api/analyses/2").Allowed)
	assert.False(t, l.Allow("c", "DELETE", "/api/analyses/3").Allowed)
}

func TestLimiter_UnlimitedPaths(t *testing.T) {
	l, _ := newTestLimiter(Config{DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("c", "GET", "/health").Allowed)
		assert.True(t, l.Allow("c", "GET", "/metrics").Allowed)
	}
}

func TestLimiter_AllowAndDenyLists(t *testing.T) {
	l, _ := newTestLimiter(Config{
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Allow:         map[string]bool{"trusted": true},
		Deny:          map[string]bool{"blocked": true},
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("trusted", "GET", "/x").Allowed)
	}
	assert.False(t, l.Allow("blocked", "GET", "/x").Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(Config{DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("c", "GET", "/x").Allowed)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(Config{DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("old", "GET", "/x")
	clock.Advance(2 * time.Hour)
	l.Allow("new", "GET", "/x")

	assert.Equal(t, 1, l.sweep(clock.Now().Add(-idleTimeout)))
	assert.Len(t, l.buckets, 1)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(Config{Enabled: true, CleanupInterval: time.Millisecond})
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(Config{DefaultLimit: 50, DefaultWindow: time.Hour})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("c", "GET", "/x").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMatchRule(t *testing.T) {
	rules := []Rule{
		{Method: "POST", Path: "/api/parse-resume", Limit: 1},
		{Method: "DELETE", Path: "/api/analyses/", Limit: 2},
	}

	assert.Equal(t, 1, MatchRule("POST", "/api/parse-resume", rules).Limit)
	assert.Equal(t, 2, MatchRule("DELETE", "/api/analyses/abc", rules).Limit)
	assert.Nil(t, MatchRule("GET", "/api/parse-resume", rules))
	assert.Nil(t, MatchRule("DELETE", "/api/analyses", rules))
	assert.Equal(t, 0, MatchRule("GET", "/health", rules).Limit)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1 , ,10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")

	cfg := ConfigFromEnv()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Allow)
	assert.Empty(t, cfg.Deny)
	assert.Equal(t, DefaultRules(), cfg.Rules)
}

func TestConfigFromEnv_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, ConfigFromEnv().Enabled)
}
