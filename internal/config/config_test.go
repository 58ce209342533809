package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPI.BaseURL)
	assert.Equal(t, 20, cfg.NewsAPI.PageSize)
	assert.Equal(t, 30*time.Second, cfg.NewsAPI.Timeout)
	assert.Equal(t, 1, cfg.NewsAPI.Burst)
	assert.Equal(t, "bbc-news", cfg.Source)
	assert.Equal(t, "BBC News", cfg.SourceName("bbc-news"))
	assert.Equal(t, "TechCrunch", cfg.SourceName("techcrunch"))
	assert.Equal(t, 5*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, time.Minute, cfg.Refresh.Timeout)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoad_FileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_NEWS_KEY", "from-env")
	path := writeConfig(t, `
news_api:
  api_key: ${TEST_NEWS_KEY}
  page_size: 10
  timeout: 5s
  rate_limit: 0.5
source: cnn
sources:
  cnn: CNN International
refresh:
  interval: 30s
database:
  enabled: true
  host: db
  user: news
  password: secret
  dbname: headlines
log_level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.NewsAPI.APIKey)
	assert.Equal(t, 10, cfg.NewsAPI.PageSize)
	assert.Equal(t, 5*time.Second, cfg.NewsAPI.Timeout)
	assert.Equal(t, 0.5, cfg.NewsAPI.RateLimit)
	assert.Equal(t, "cnn", cfg.Source)
	assert.Equal(t, "CNN International", cfg.SourceName("cnn"))
	assert.Equal(t, "bbc-news", cfg.SourceName("bbc-news"))
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, "host=db port=5432 user=news password=secret dbname=headlines sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, "source: techcrunch\n"))

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.NewsAPI.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "news_api: [unclosed"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
