// Package scraper extracts full article bodies from publisher pages.
package scraper

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pegasusinfo/newsintel/internal/logger"
)

const maxContentLength = 2000

// Boilerplate nodes removed before text extraction.
const junkSelectors = "script, style, nav, footer, header, aside"

// Paragraph selectors tried in order; the first one yielding enough
// paragraphs wins.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

// Content is the scraped body of one article.
type Content struct {
	URL  string
	Text string
}

type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches one page and returns its main text, capped at 2000 chars.
func (s *Scraper) Extract(url string) (*Content, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	doc.Find(junkSelectors).Remove()

	text := extractParagraphs(doc)
	if text == "" {
		return nil, fmt.Errorf("no content found")
	}
	if len(text) > maxContentLength {
		text = text[:maxContentLength]
	}

	return &Content{URL: url, Text: text}, nil
}

func extractParagraphs(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			return strings.Join(paragraphs, " ")
		}
	}
	return ""
}

// ExtractAll scrapes urls with a bounded worker pool and returns the
// successfully extracted contents keyed by URL. Failures are logged and
// skipped.
func (s *Scraper) ExtractAll(urls []string, concurrency int) map[string]*Content {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(map[string]*Content, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan string)
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				content, err := s.Extract(url)
				if err != nil {
					logger.Debug("article scrape failed", "url", url, "error", err)
					continue
				}
				mu.Lock()
				results[url] = content
				mu.Unlock()
			}
		}()
	}

	for _, url := range urls {
		jobs <- url
	}
	close(jobs)
	wg.Wait()

	logger.Info("article contents scraped", "ok", len(results), "total", len(urls))
	return results
}
