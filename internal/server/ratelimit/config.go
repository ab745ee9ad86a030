package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one method on a path. A Path ending in "/" matches every path
// below it.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting settings.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allow           map[string]bool
	Deny            map[string]bool
	Rules           []Rule
}

// DefaultRules returns the per-endpoint limits of the parser API.
func DefaultRules() []Rule {
	return []Rule{
		// analysis calls a paid remote service
		{Method: "POST", Path: "/api/parse-resume", Limit: 30, Window: time.Hour, Burst: 5},
		{Method: "DELETE", Path: "/api/analyses/", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// unlimited paths are never counted.
var unlimited = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// MatchRule returns the rule for method and path, or nil when the default
// limit applies. Exact paths win over prefixes.
func MatchRule(method, path string, rules []Rule) *Rule {
	if unlimited[path] {
		return &Rule{}
	}
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

// ConfigFromEnv reads RATE_LIMIT_* variables.
func ConfigFromEnv() Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return Config{}
	}
	return Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Allow:           parseList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Deny:            parseList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Rules:           DefaultRules(),
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func parseList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
