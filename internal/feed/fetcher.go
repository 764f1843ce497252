package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
	"github.com/pegasusinfo/newsintel/internal/ratelimit"
	"github.com/pegasusinfo/newsintel/internal/retry"
	"github.com/pegasusinfo/newsintel/internal/textutil"
)

// Fetcher downloads and parses syndicated feeds.
type Fetcher struct {
	parser *gofeed.Parser
	pacer  *ratelimit.Pacer
	retry  retry.Config
	now    func() time.Time
}

// NewFetcher builds a fetcher with a request timeout, a polite delay between
// feed requests and a retry policy for flaky feeds.
func NewFetcher(timeout, delay time.Duration, maxRetries int) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &Fetcher{
		parser: parser,
		pacer:  ratelimit.NewPacer(delay),
		retry: retry.Config{
			MaxAttempts: maxRetries,
			Delay:       delay,
			Backoff:     true,
		},
		now: time.Now,
	}
}

// FetchAll downloads every configured feed and returns the deduplicated
// article list. Individual feed failures are logged and skipped; an empty
// result is not an error.
func (f *Fetcher) FetchAll(ctx context.Context, sources map[string][]string) []Article {
	var all []Article
	okCount, total := 0, 0

	for _, category := range SortedCategories(sources) {
		for _, feedURL := range sources[category] {
			total++
			articles, err := f.fetchFeed(ctx, feedURL, category)
			if err != nil {
				logger.Error("feed fetch failed", "url", feedURL, "error", err)
				continue
			}
			okCount++
			all = append(all, articles...)
			logger.Info("feed fetched", "url", feedURL, "category", category, "articles", len(articles))
		}
	}

	logger.Info("feeds processed", "ok", okCount, "total", total)

	unique := Dedupe(all)
	metrics.Global.AddArticlesFetched(len(unique))
	metrics.Global.AddDuplicatesFiltered(len(all) - len(unique))
	return unique
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL, category string) ([]Article, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	var parsed *gofeed.Feed
	err := retry.Do(ctx, f.retry, func() error {
		var err error
		parsed, err = f.parser.ParseURLWithContext(feedURL, ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, f.parseItem(item, category))
	}
	return articles, nil
}

func (f *Fetcher) parseItem(item *gofeed.Item, category string) Article {
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	return Article{
		Title:        textutil.Sanitize(item.Title),
		Summary:      textutil.Sanitize(stripHTML(summary)),
		Link:         item.Link,
		Published:    item.PublishedParsed,
		Source:       sourceDomain(item.Link),
		CategoryHint: category,
		FetchedAt:    f.now(),
	}
}

// stripHTML flattens an HTML fragment to its text. Feed summaries often ship
// with markup embedded.
func stripHTML(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}

// sourceDomain extracts the publisher domain from an article link.
func sourceDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// Dedupe removes articles sharing a link, keeping the first occurrence.
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]Article, 0, len(articles))

	for _, a := range articles {
		if _, dup := seen[a.Link]; dup {
			continue
		}
		seen[a.Link] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

// FilterByWindow keeps articles published within the last window hours.
// Articles without a publish time are dropped.
func FilterByWindow(articles []Article, hours int, now time.Time) []Article {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	recent := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Published == nil || a.Published.Before(cutoff) {
			continue
		}
		recent = append(recent, a)
	}
	return recent
}
