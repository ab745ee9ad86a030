// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvEndpoint      = "AZURE_FORM_RECOGNIZER_ENDPOINT"
	EnvAPIKey        = "AZURE_FORM_RECOGNIZER_KEY"
	EnvModelID       = "AZURE_FORM_RECOGNIZER_MODEL"
	EnvAPIVersion    = "AZURE_FORM_RECOGNIZER_API_VERSION"
	EnvTimeout       = "AZURE_FORM_RECOGNIZER_TIMEOUT"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvLogLevel      = "LOG_LEVEL"
	EnvMaxConcurrent = "RESUME_MAX_CONCURRENT"
	EnvRedisURL      = "REDIS_URL"
	EnvCacheTTL      = "RESUME_CACHE_TTL"
	EnvMinIOEndpoint = "MINIO_ENDPOINT"
	EnvMinIOAccess   = "MINIO_ACCESS_KEY"
	EnvMinIOSecret   = "MINIO_SECRET_KEY"
	EnvMinIOBucket   = "MINIO_BUCKET"
	EnvMinIOUseSSL   = "MINIO_USE_SSL"
)

// Defaults applied by Defaults and FromEnv.
const (
	DefaultModelID       = "prebuilt-document"
	DefaultAPIVersion    = "2023-07-31"
	DefaultFile          = "your_resume.pdf"
	DefaultTimeout       = 2 * time.Minute
	DefaultLogLevel      = "info"
	DefaultMaxConcurrent = 4
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMinIOBucket   = "resumes"
)

// fieldEnv maps struct namespaces to the environment variable that sets them.
var fieldEnv = map[string]string{
	"Config.Endpoint":          EnvEndpoint,
	"Config.APIKey":            EnvAPIKey,
	"Config.ModelID":           EnvModelID,
	"Config.APIVersion":        EnvAPIVersion,
	"Config.Timeout":           EnvTimeout,
	"Config.DatabaseURL":       EnvDatabaseURL,
	"Config.LogLevel":          EnvLogLevel,
	"Config.MaxConcurrent":     EnvMaxConcurrent,
	"Config.RedisURL":          EnvRedisURL,
	"Config.CacheTTL":          EnvCacheTTL,
	"Config.Archive.Endpoint":  EnvMinIOEndpoint,
	"Config.Archive.AccessKey": EnvMinIOAccess,
	"Config.Archive.SecretKey": EnvMinIOSecret,
}

var validate = validator.New()

// Config holds the settings for talking to the analysis service.
// Values can come from a JSON or YAML file, the environment, or CLI flags.
type Config struct {
	Endpoint      string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"required,url"`
	APIKey        string        `json:"api_key,omitempty" yaml:"api_key,omitempty" validate:"required"`
	ModelID       string        `json:"model_id,omitempty" yaml:"model_id,omitempty" validate:"required"`
	APIVersion    string        `json:"api_version,omitempty" yaml:"api_version,omitempty" validate:"required"`
	File          string        `json:"file,omitempty" yaml:"file,omitempty"`
	Timeout       time.Duration `json:"-" yaml:"-" validate:"gte=0"`
	DatabaseURL   string        `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"`
	LogLevel      string        `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	MaxConcurrent int           `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" validate:"gte=0"`
	RedisURL      string        `json:"redis_url,omitempty" yaml:"redis_url,omitempty" validate:"omitempty,url"`
	CacheTTL      time.Duration `json:"-" yaml:"-" validate:"gte=0"`
	Archive       MinIOConfig   `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// MinIOConfig configures the optional document archive.
type MinIOConfig struct {
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,hostname_port"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty" validate:"required_with=Endpoint"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty" validate:"required_with=Endpoint"`
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty" yaml:"use_ssl,omitempty"`
}

// Enabled reports whether an archive endpoint is configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

// MissingError reports required settings that were not provided.
type MissingError struct {
	Variables []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Variables, ", "))
}

// Defaults returns a Config holding only default values.
func Defaults() Config {
	return Config{
		ModelID:       DefaultModelID,
		APIVersion:    DefaultAPIVersion,
		File:          DefaultFile,
		Timeout:       DefaultTimeout,
		LogLevel:      DefaultLogLevel,
		MaxConcurrent: DefaultMaxConcurrent,
		CacheTTL:      DefaultCacheTTL,
		Archive:       MinIOConfig{Bucket: DefaultMinIOBucket},
	}
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() Config {
	d := Defaults()
	return Config{
		Endpoint:      os.Getenv(EnvEndpoint),
		APIKey:        os.Getenv(EnvAPIKey),
		ModelID:       getEnv(EnvModelID, d.ModelID),
		APIVersion:    getEnv(EnvAPIVersion, d.APIVersion),
		File:          d.File,
		Timeout:       getEnvAsDuration(EnvTimeout, d.Timeout),
		DatabaseURL:   os.Getenv(EnvDatabaseURL),
		LogLevel:      strings.ToLower(getEnv(EnvLogLevel, d.LogLevel)),
		MaxConcurrent: getEnvAsInt(EnvMaxConcurrent, d.MaxConcurrent),
		RedisURL:      os.Getenv(EnvRedisURL),
		CacheTTL:      getEnvAsDuration(EnvCacheTTL, d.CacheTTL),
		Archive: MinIOConfig{
			Endpoint:  os.Getenv(EnvMinIOEndpoint),
			AccessKey: os.Getenv(EnvMinIOAccess),
			SecretKey: os.Getenv(EnvMinIOSecret),
			Bucket:    getEnv(EnvMinIOBucket, d.Archive.Bucket),
			UseSSL:    getEnvAsBool(EnvMinIOUseSSL, false),
		},
	}
}

// LoadConfig loads configuration from a JSON file, or a YAML file when the
// extension is .yaml or .yml.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ModelID == "" {
		result.ModelID = defaults.ModelID
	}
	if result.APIVersion == "" {
		result.APIVersion = defaults.APIVersion
	}
	if result.File == "" {
		result.File = defaults.File
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Archive.Endpoint == "" {
		result.Archive.Endpoint = defaults.Archive.Endpoint
		result.Archive.AccessKey = defaults.Archive.AccessKey
		result.Archive.SecretKey = defaults.Archive.SecretKey
		result.Archive.UseSSL = defaults.Archive.UseSSL
	}
	if result.Archive.Bucket == "" {
		result.Archive.Bucket = defaults.Archive.Bucket
	}

	return result
}

// Validate checks required values and formats. Missing required values are
// reported together as a *MissingError so they can be fixed in one pass.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	var missing, problems []string
	for _, fe := range verrs {
		name := fieldEnv[fe.StructNamespace()]
		if name == "" {
			name = fe.Field()
		}
		if fe.Tag() == "required" || fe.Tag() == "required_with" {
			missing = append(missing, name)
			continue
		}
		problems = append(problems, fmt.Sprintf("%s is invalid (%s)", name, fe.Tag()))
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingError{Variables: missing}
	}
	return fmt.Errorf("config error: %s", strings.Join(problems, "; "))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
