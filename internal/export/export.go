// Package export writes enriched articles and trending reports to disk as
// JSON, CSV and Markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
	"github.com/pegasusinfo/newsintel/internal/trending"
)

type Exporter struct {
	dir string
	now func() time.Time
}

func New(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory %s: %w", dir, err)
	}
	return &Exporter{dir: dir, now: time.Now}, nil
}

func (e *Exporter) timestamp() string {
	return e.now().Format("20060102_150405")
}

func (e *Exporter) path(name, ext string) string {
	if name == "" {
		name = "news_" + e.timestamp()
	}
	return filepath.Join(e.dir, name+"."+ext)
}

// jsonEnvelope wraps exported articles with export metadata.
type jsonEnvelope struct {
	Metadata jsonMetadata   `json:"metadata"`
	Articles []feed.Article `json:"articles"`
}

type jsonMetadata struct {
	ExportedAt    string `json:"exported_at"`
	TotalArticles int    `json:"total_articles"`
	Format        string `json:"format"`
}

// JSON writes articles as a JSON document and returns the file path.
func (e *Exporter) JSON(articles []feed.Article, name string) (string, error) {
	path := e.path(name, "json")

	envelope := jsonEnvelope{
		Metadata: jsonMetadata{
			ExportedAt:    e.now().Format(time.RFC3339),
			TotalArticles: len(articles),
			Format:        "json",
		},
		Articles: articles,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal articles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write JSON export: %w", err)
	}

	logger.Info("exported articles to JSON", "count", len(articles), "path", path)
	return path, nil
}

var csvHeader = []string{
	"title", "link", "source", "category_hint", "published_date", "fetched_at",
	"primary_category", "secondary_categories", "category_scores",
	"sensitive_topics", "is_sensitive", "impact_level", "sentiment",
	"entities", "trending_score", "summary", "insight",
}

// CSV writes articles as CSV with a fixed column set. Structured fields are
// JSON-encoded inside their cells.
func (e *Exporter) CSV(articles []feed.Article, name string) (string, error) {
	path := e.path(name, "csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write CSV header: %w", err)
	}

	for _, a := range articles {
		row := []string{
			a.Title,
			a.Link,
			a.Source,
			a.CategoryHint,
			formatTime(a.Published),
			a.FetchedAt.Format(time.RFC3339),
			a.PrimaryCategory,
			jsonCell(a.SecondaryCategories),
			jsonCell(a.CategoryScores),
			jsonCell(a.SensitiveTopics),
			strconv.FormatBool(a.Sensitive),
			a.ImpactLevel,
			a.Sentiment,
			jsonCell(a.Entities),
			strconv.FormatFloat(a.TrendingScore, 'f', 2, 64),
			a.Summary,
			a.Insight,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush CSV export: %w", err)
	}

	logger.Info("exported articles to CSV", "count", len(articles), "path", path)
	return path, nil
}

var impactMarkers = map[string]string{
	"high":   "🔴",
	"medium": "🟡",
	"low":    "🟢",
}

// Markdown writes a category-grouped report of the articles.
func (e *Exporter) Markdown(articles []feed.Article, name string) (string, error) {
	path := e.path(name, "md")

	groups := map[string][]feed.Article{}
	for _, a := range articles {
		groups[a.Category()] = append(groups[a.Category()], a)
	}
	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("# News Intelligence Report\n")
	fmt.Fprintf(&b, "\n**Generated:** %s\n", e.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Total Articles:** %d\n", len(articles))
	b.WriteString("\n---\n")

	for _, category := range categories {
		inCategory := groups[category]
		fmt.Fprintf(&b, "\n## %s\n", titleWord(category))
		fmt.Fprintf(&b, "**Articles:** %d\n\n---\n", len(inCategory))

		for i, a := range inCategory {
			fmt.Fprintf(&b, "\n### %d. %s\n", i+1, orDefault(a.Title, "No Title"))
			fmt.Fprintf(&b, "**Source:** %s\n", orDefault(a.Source, "Unknown"))
			fmt.Fprintf(&b, "**Date:** %s\n", formatTime(a.Published))
			fmt.Fprintf(&b, "**Link:** %s\n", orDefault(a.Link, "No link"))

			if a.ImpactLevel != "" {
				fmt.Fprintf(&b, "**Impact:** %s %s\n", impactMarkers[a.ImpactLevel], titleWord(a.ImpactLevel))
			}
			if a.Sensitive {
				b.WriteString("**Status:** ⚠️ SENSITIVE\n")
			}
			if a.TrendingScore > 0 {
				fmt.Fprintf(&b, "**Trending Score:** %.2f\n", a.TrendingScore)
			}

			fmt.Fprintf(&b, "\n**Summary:**\n%s\n", orDefault(a.Summary, "No summary"))
			if a.Insight != "" {
				fmt.Fprintf(&b, "\n**Insight:**\n%s\n", a.Insight)
			}
			if a.Entities != nil {
				if entities := formatEntities(a.Entities); entities != "" {
					fmt.Fprintf(&b, "\n**Entities:** %s\n", entities)
				}
			}
			b.WriteString("\n---\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write Markdown export: %w", err)
	}

	logger.Info("exported articles to Markdown", "count", len(articles), "path", path)
	return path, nil
}

// TrendingReport writes the trending snapshot as a Markdown report.
func (e *Exporter) TrendingReport(res trending.Result, name string) (string, error) {
	if name == "" {
		name = "trending_" + e.timestamp()
	}
	path := filepath.Join(e.dir, name+".md")

	var b strings.Builder
	b.WriteString("# Trending Topics Report\n")
	fmt.Fprintf(&b, "\n**Generated:** %s\n", e.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Time Window:** Last %d hours\n", res.WindowHours)
	fmt.Fprintf(&b, "**Articles Analyzed:** %d\n", res.ArticlesAnalyzed)
	fmt.Fprintf(&b, "**Threshold:** %d\n", res.Threshold)
	b.WriteString("\n---\n")

	if len(res.Keywords) > 0 {
		b.WriteString("\n## 🔥 Top Trending Keywords\n\n")
		for _, entry := range res.Keywords {
			fmt.Fprintf(&b, "- **%s**: %d mentions\n", titleWord(entry.Term), entry.Count)
		}
		b.WriteString("\n---\n")
	}

	if len(res.Phrases) > 0 {
		b.WriteString("\n## 🔥 Top Trending Phrases\n\n")
		for _, entry := range res.Phrases {
			fmt.Fprintf(&b, "- **%s**: %d mentions\n", titleWord(entry.Term), entry.Count)
		}
		b.WriteString("\n---\n")
	}

	categories := make([]string, 0, len(res.ByCategory))
	for cat := range res.ByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	hasCategoryEntries := false
	for _, cat := range categories {
		if len(res.ByCategory[cat]) > 0 {
			hasCategoryEntries = true
			break
		}
	}
	if hasCategoryEntries {
		b.WriteString("\n## 📊 Trending by Category\n")
		for _, cat := range categories {
			entries := res.ByCategory[cat]
			if len(entries) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", titleWord(cat))
			for _, entry := range entries {
				fmt.Fprintf(&b, "- %s: %d mentions\n", titleWord(entry.Term), entry.Count)
			}
		}
		b.WriteString("\n---\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write trending report: %w", err)
	}

	logger.Info("exported trending report", "path", path)
	return path, nil
}

// All exports articles in every requested format. Per-format failures are
// logged and the other formats still run.
func (e *Exporter) All(articles []feed.Article, formats []string, name string) map[string]string {
	results := map[string]string{}

	for _, format := range formats {
		var path string
		var err error

		switch format {
		case "json":
			path, err = e.JSON(articles, name)
		case "csv":
			path, err = e.CSV(articles, name)
		case "markdown":
			path, err = e.Markdown(articles, name)
		default:
			logger.Warn("unknown export format", "format", format)
			continue
		}

		if err != nil {
			logger.Error("export failed", "format", format, "error", err)
			continue
		}
		results[format] = path
	}

	metrics.Global.AddExportsWritten(len(results))
	return results
}

func jsonCell(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(data)
	if s == "null" {
		return ""
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatEntities(entities *feed.Entities) string {
	var parts []string
	for _, group := range []struct {
		label string
		items []string
	}{
		{"Locations", entities.Locations},
		{"Organizations", entities.Organizations},
		{"Countries", entities.Countries},
	} {
		if len(group.items) == 0 {
			continue
		}
		limit := len(group.items)
		if limit > 3 {
			limit = 3
		}
		parts = append(parts, group.label+": "+strings.Join(group.items[:limit], ", "))
	}
	return strings.Join(parts, ", ")
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
