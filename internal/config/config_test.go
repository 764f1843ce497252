package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "configs/sources.yaml", cfg.SourcesConfigPath)
	assert.Equal(t, 3, cfg.TrendingThreshold)
	assert.Equal(t, 24, cfg.TimeWindowHours)
	assert.Equal(t, 500, cfg.SummaryMaxLength)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"json", "csv", "markdown"}, cfg.ExportFormats)
	assert.Equal(t, "seen_articles.json", cfg.CacheFilePath)
	assert.Equal(t, 48, cfg.CacheTTLHours)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRENDING_THRESHOLD", "5")
	t.Setenv("TIME_WINDOW_HOURS", "12")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")
	t.Setenv("EXPORT_DIR", "/tmp/exports")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.TrendingThreshold)
	assert.Equal(t, 12, cfg.TimeWindowHours)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/exports", cfg.ExportDir)
	assert.True(t, cfg.Debug)
}

func TestLoad_NonPositiveTrendingSettingsAccepted(t *testing.T) {
	t.Setenv("TRENDING_THRESHOLD", "0")
	t.Setenv("TIME_WINDOW_HOURS", "-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.TrendingThreshold)
	assert.Equal(t, -1, cfg.TimeWindowHours)
}

func TestValidate_TelegramChatIDRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "bot-token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestValidate_UnknownExportFormat(t *testing.T) {
	cfg := &Config{
		SourcesConfigPath: "configs/sources.yaml",
		SummaryMaxLength:  500,
		ExportFormats:     []string{"json", "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format: xml")
}
