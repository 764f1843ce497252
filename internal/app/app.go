// Package app wires the pipeline stages together: fetch, classify, detect
// trending topics, analyze, summarize, export, alert.
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pegasusinfo/newsintel/internal/alert"
	"github.com/pegasusinfo/newsintel/internal/analyze"
	"github.com/pegasusinfo/newsintel/internal/cache"
	"github.com/pegasusinfo/newsintel/internal/classify"
	"github.com/pegasusinfo/newsintel/internal/config"
	"github.com/pegasusinfo/newsintel/internal/export"
	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/gemini"
	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
	"github.com/pegasusinfo/newsintel/internal/ratelimit"
	"github.com/pegasusinfo/newsintel/internal/scraper"
	"github.com/pegasusinfo/newsintel/internal/storage"
	"github.com/pegasusinfo/newsintel/internal/summarize"
	"github.com/pegasusinfo/newsintel/internal/trending"
)

// Options are the per-run knobs from the command line.
type Options struct {
	Hours    int    // look-back window; 0 uses the configured default
	Category string // restrict exports to one category; empty means all
	Export   bool
}

// Run executes one full pipeline pass.
func Run(ctx context.Context, opts Options) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordPipelineTime(time.Since(start))
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hours := cfg.TimeWindowHours
	if opts.Hours > 0 {
		hours = opts.Hours
	}

	sources, err := feed.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	// Stage 1: fetch and window.
	logger.Info("fetching news articles", "categories", len(sources))
	fetcher := feed.NewFetcher(cfg.RequestTimeout, cfg.RequestDelay, cfg.MaxRetries)
	articles := fetcher.FetchAll(ctx, sources)

	recent := feed.FilterByWindow(articles, hours, time.Now())
	logger.Info("recent articles selected", "window_hours", hours, "count", len(recent))

	recent = dropSeen(cfg, recent)
	if len(recent) == 0 {
		logger.Warn("no recent articles found, pipeline stopped")
		metrics.Global.SetLastRun()
		return nil
	}

	// Stage 2: classify.
	classifier := classify.New()
	classified := classifier.ClassifyAll(recent)

	// Stage 3: trending detection. The detector is pure; logging happens
	// here on the returned snapshot.
	detector := trending.NewDetector(cfg.TrendingThreshold, hours)
	trendingResult := detector.Detect(classified)
	metrics.Global.IncrementTrendingRuns()
	logTrending(trendingResult)

	// Stage 4: analyze and score.
	analyzed := analyze.New().AnalyzeAll(classified)
	for i := range analyzed {
		analyzed[i].TrendingScore = detector.Score(analyzed[i], trendingResult)
	}

	// Stage 5: summarize, with AI when configured.
	summarizer, closeAI, err := buildSummarizer(ctx, cfg, analyzed)
	if err != nil {
		return err
	}
	defer closeAI()
	summarized := summarizer.SummarizeAll(ctx, analyzed)

	if opts.Category != "" {
		summarized = filterCategory(summarized, opts.Category)
		logger.Info("category filter applied", "category", opts.Category, "count", len(summarized))
	}

	// Stage 6: export, archive, alert.
	if opts.Export {
		exporter, err := export.New(cfg.ExportDir)
		if err != nil {
			return err
		}
		stamp := time.Now().Format("20060102_150405")
		paths := exporter.All(summarized, cfg.ExportFormats, "news_"+stamp)
		for format, path := range paths {
			logger.Info("export written", "format", format, "path", path)
		}
		if _, err := exporter.TrendingReport(trendingResult, "trending_"+stamp); err != nil {
			logger.Error("trending report export failed", "error", err)
		}
	}

	if cfg.DatabaseURL != "" {
		archiveArticles(ctx, cfg.DatabaseURL, summarized)
	}

	if cfg.TelegramToken != "" {
		notifier := alert.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err := notifier.SendSensitiveAlerts(summarized); err != nil {
			logger.Error("sensitive alert failed", "error", err)
		}
	}

	metrics.Global.SetLastRun()
	logger.Info("pipeline completed", "articles", len(summarized), "duration", time.Since(start))
	return nil
}

// dropSeen removes articles processed by a previous run and marks the rest.
// Cache problems degrade to processing everything.
func dropSeen(cfg *config.Config, articles []feed.Article) []feed.Article {
	seenCache := storage.NewSeenCache(cfg.CacheFilePath, cfg.CacheTTLHours)
	if err := seenCache.Load(); err != nil {
		logger.Warn("seen cache unavailable, processing all articles", "error", err)
		return articles
	}

	fresh := make([]feed.Article, 0, len(articles))
	for _, a := range articles {
		hash := storage.Hash(a.Title, a.Link)
		if seenCache.Seen(hash) {
			continue
		}
		seenCache.Mark(hash, a.Title, a.Link, a.CategoryHint, a.Source)
		fresh = append(fresh, a)
	}

	if skipped := len(articles) - len(fresh); skipped > 0 {
		logger.Info("previously processed articles skipped", "count", skipped)
	}
	if err := seenCache.Save(); err != nil {
		logger.Warn("seen cache save failed", "error", err)
	}
	return fresh
}

// buildSummarizer returns the summarizer, AI-enabled when a Gemini key is
// configured. Scraped article bodies feed the AI prompts.
func buildSummarizer(ctx context.Context, cfg *config.Config, articles []feed.Article) (*summarize.Summarizer, func(), error) {
	summarizer := summarize.New(cfg.SummaryMaxLength)
	if cfg.GeminiAPIKey == "" {
		return summarizer, func() {}, nil
	}

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}

	scrapeContent(cfg, articles)

	budget := ratelimit.NewBudget(cfg.MaxAIRequests)
	summaryCache := cache.New(time.Duration(cfg.CacheTTLHours) * time.Hour)
	summarizer.WithAI(client, budget, summaryCache)
	return summarizer, client.Close, nil
}

// scrapeContent fetches full bodies for the highest-scoring articles so the
// AI summarizer has more than the feed blurb to work with.
func scrapeContent(cfg *config.Config, articles []feed.Article) {
	ranked := make([]int, 0, len(articles))
	for i := range articles {
		ranked = append(ranked, i)
	}
	sort.Slice(ranked, func(a, b int) bool {
		return articles[ranked[a]].TrendingScore > articles[ranked[b]].TrendingScore
	})
	if len(ranked) > cfg.ScrapeMaxArticles {
		ranked = ranked[:cfg.ScrapeMaxArticles]
	}

	urls := make([]string, 0, len(ranked))
	for _, idx := range ranked {
		if articles[idx].Link != "" {
			urls = append(urls, articles[idx].Link)
		}
	}

	contents := scraper.New(cfg.RequestTimeout).ExtractAll(urls, cfg.ScrapeConcurrency)
	for _, idx := range ranked {
		if content, ok := contents[articles[idx].Link]; ok {
			articles[idx].Content = content.Text
		}
	}
}

func archiveArticles(ctx context.Context, databaseURL string, articles []feed.Article) {
	archive, err := storage.NewArchive(databaseURL)
	if err != nil {
		logger.Error("article archive unavailable", "error", err)
		return
	}
	defer archive.Close()

	if err := archive.SaveArticles(ctx, articles); err != nil {
		logger.Error("article archive save failed", "error", err)
	}
}

func filterCategory(articles []feed.Article, category string) []feed.Article {
	filtered := make([]feed.Article, 0, len(articles))
	for _, a := range articles {
		if a.Category() == category {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func logTrending(res trending.Result) {
	logger.Info("trending detection completed",
		"window_hours", res.WindowHours,
		"articles_analyzed", res.ArticlesAnalyzed,
		"threshold", res.Threshold,
		"keywords", len(res.Keywords),
		"phrases", len(res.Phrases))

	for i, entry := range res.Keywords {
		if i >= 5 {
			break
		}
		logger.Info("trending keyword", "term", entry.Term, "mentions", entry.Count)
	}
	for category, entries := range res.ByCategory {
		if len(entries) > 0 {
			logger.Debug("trending by category", "category", category, "topics", len(entries))
		}
	}
}
