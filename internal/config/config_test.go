package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Endpoint = "https://resumes.cognitiveservices.azure.com/"
	cfg.APIKey = "secret"
	return cfg
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"endpoint": "https://resumes.cognitiveservices.azure.com/",
		"model_id": "prebuilt-layout",
		"file": "cv.pdf",
		"max_concurrent": 8
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://resumes.cognitiveservices.azure.com/", cfg.Endpoint)
	assert.Equal(t, "prebuilt-layout", cfg.ModelID)
	assert.Equal(t, "cv.pdf", cfg.File)
	assert.Equal(t, 8, cfg.MaxConcurrent)
}

func TestLoadConfig_YAML(t *testing.T) {
	content := `endpoint: https://resumes.cognitiveservices.azure.com/
model_id: prebuilt-read
redis_url: redis://localhost:6379/0
archive:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
  bucket: cvs
`

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "prebuilt-read", cfg.ModelID)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "localhost:9000", cfg.Archive.Endpoint)
	assert.Equal(t, "cvs", cfg.Archive.Bucket)
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("endpoint: [unclosed"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvEndpoint, "https://env.cognitiveservices.azure.com/")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvModelID, "")
	t.Setenv(EnvTimeout, "45s")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvMaxConcurrent, "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "https://env.cognitiveservices.azure.com/", cfg.Endpoint)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, DefaultModelID, cfg.ModelID)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultFile, cfg.File)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
}

func TestFromEnv_OptionalServices(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://cache:6379/1")
	t.Setenv(EnvCacheTTL, "1h")
	t.Setenv(EnvMinIOEndpoint, "minio:9000")
	t.Setenv(EnvMinIOAccess, "access")
	t.Setenv(EnvMinIOSecret, "secret")
	t.Setenv(EnvMinIOBucket, "")
	t.Setenv(EnvMinIOUseSSL, "true")

	cfg := FromEnv()

	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, MinIOConfig{
		Endpoint:  "minio:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    DefaultMinIOBucket,
		UseSSL:    true,
	}, cfg.Archive)
}

func TestDefaults_ArchiveDisabled(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.Archive.Enabled())
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
}

func TestValidate_ArchiveNeedsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Archive.Endpoint = "localhost:9000"

	err := cfg.Validate()
	require.Error(t, err)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{EnvMinIOAccess, EnvMinIOSecret}, missing.Variables)
}

func TestValidate_InvalidRedisURL(t *testing.T) {
	cfg := validConfig()
	cfg.RedisURL = "::not-a-url"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRedisURL)
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := Defaults()

	err := cfg.Validate()
	require.Error(t, err)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{EnvEndpoint, EnvAPIKey}, missing.Variables)
	assert.Contains(t, err.Error(), EnvEndpoint)
}

func TestValidate_InvalidEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoint = "not a url"

	err := cfg.Validate()
	require.Error(t, err)

	var missing *MissingError
	assert.False(t, errors.As(err, &missing))
	assert.Contains(t, err.Error(), EnvEndpoint)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogLevel)
}

func TestValidate_NegativeConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.MaxConcurrent = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxConcurrent)
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Endpoint: "https://custom.cognitiveservices.azure.com/",
		ModelID:  "prebuilt-read",
	}

	merged := partial.MergeWithDefaults(Config{
		Endpoint: "https://default.cognitiveservices.azure.com/",
		APIKey:   "default-key",
		ModelID:  DefaultModelID,
		File:     "default.pdf",
		Timeout:  time.Minute,
	})

	assert.Equal(t, "https://custom.cognitiveservices.azure.com/", merged.Endpoint)
	assert.Equal(t, "prebuilt-read", merged.ModelID)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "default.pdf", merged.File)
	assert.Equal(t, time.Minute, merged.Timeout)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "k", merged.APIKey)
	assert.Empty(t, merged.Endpoint)
}
