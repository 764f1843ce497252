// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Feed settings
	SourcesConfigPath string
	RequestTimeout    time.Duration
	RequestDelay      time.Duration
	MaxRetries        int

	// Trending settings
	TrendingThreshold int
	TimeWindowHours   int

	// Summary settings
	SummaryMaxLength int

	// AI settings (optional; rule-based summaries when unset)
	GeminiAPIKey  string
	MaxAIRequests int

	// Scraper settings
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// Export settings
	ExportDir     string
	ExportFormats []string

	// Alert settings (optional)
	TelegramToken  string
	TelegramChatID string

	// Storage settings (optional)
	DatabaseURL   string
	CacheFilePath string
	CacheTTLHours int

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourcesConfigPath: "configs/sources.yaml",
		RequestTimeout:    30 * time.Second,
		RequestDelay:      1 * time.Second,
		MaxRetries:        3,
		TrendingThreshold: 3,
		TimeWindowHours:   24,
		SummaryMaxLength:  500,
		MaxAIRequests:     10,
		ScrapeConcurrency: 8,
		ScrapeMaxArticles: 10,
		ExportDir:         "exports",
		ExportFormats:     []string{"json", "csv", "markdown"},
	}

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.ExportDir = getEnvOrDefault("EXPORT_DIR", cfg.ExportDir)
	cfg.CacheFilePath = getEnvOrDefault("CACHE_FILE_PATH", "seen_articles.json")
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", 48)

	cfg.TrendingThreshold = getEnvIntOrDefault("TRENDING_THRESHOLD", cfg.TrendingThreshold)
	cfg.TimeWindowHours = getEnvIntOrDefault("TIME_WINDOW_HOURS", cfg.TimeWindowHours)
	cfg.SummaryMaxLength = getEnvIntOrDefault("SUMMARY_MAX_LENGTH", cfg.SummaryMaxLength)
	cfg.MaxRetries = getEnvIntOrDefault("MAX_RETRIES", cfg.MaxRetries)
	cfg.ScrapeConcurrency = getEnvIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)
	cfg.ScrapeMaxArticles = getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", cfg.ScrapeMaxArticles)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("REQUEST_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.RequestDelay = time.Duration(val) * time.Second
		}
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourcesConfigPath == "" {
		return fmt.Errorf("SOURCES_CONFIG_PATH is required")
	}
	if c.SummaryMaxLength <= 0 {
		return fmt.Errorf("SUMMARY_MAX_LENGTH must be positive")
	}
	// Non-positive threshold and window are legal degenerate settings for
	// the trending engine, so they are not rejected here.
	if c.TelegramToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	for _, format := range c.ExportFormats {
		switch format {
		case "json", "csv", "markdown":
		default:
			return fmt.Errorf("unknown export format: %s", format)
		}
	}
	return nil
}
