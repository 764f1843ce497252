// Package summarize generates article summaries and one-line insights.
// Summaries are rule-based by default; an AI generator can be plugged in and
// failures fall back to the rule-based path.
package summarize

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pegasusinfo/newsintel/internal/cache"
	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
	"github.com/pegasusinfo/newsintel/internal/ratelimit"
	"github.com/pegasusinfo/newsintel/internal/trending"
)

// Generator produces an AI summary for an article. Implemented by the
// gemini client.
type Generator interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

type Summarizer struct {
	maxLength int

	ai     Generator
	budget *ratelimit.Budget
	cache  *cache.SummaryCache
}

func New(maxLength int) *Summarizer {
	return &Summarizer{maxLength: maxLength}
}

// WithAI enables AI summaries within the given request budget.
func (s *Summarizer) WithAI(gen Generator, budget *ratelimit.Budget, summaryCache *cache.SummaryCache) *Summarizer {
	s.ai = gen
	s.budget = budget
	s.cache = summaryCache
	return s
}

var specialChars = regexp.MustCompile(`[^\w\s.,;:-]`)

// Summary produces the rule-based summary: the existing feed summary when it
// fits, otherwise cleaned title+summary truncated at a sentence boundary.
func (s *Summarizer) Summary(a feed.Article) string {
	if a.Summary != "" && len(a.Summary) <= s.maxLength {
		return a.Summary
	}

	text := cleanText(a.AnalysisText())
	return truncate(text, s.maxLength)
}

// Insight builds a one-line qualitative note from the enrichment fields.
func (s *Summarizer) Insight(a feed.Article) string {
	var b strings.Builder

	if a.Sensitive {
		fmt.Fprintf(&b, "SENSITIVE: this %s story needs attention. ", a.Category())
	} else {
		fmt.Fprintf(&b, "%s impact %s update. ", strings.ToUpper(orUnknown(a.ImpactLevel)), a.Category())
	}

	switch a.Sentiment {
	case "positive":
		b.WriteString("Positive developments indicated. ")
	case "negative":
		b.WriteString("Concerning trend noted. ")
	default:
		b.WriteString("Neutral information. ")
	}

	if a.Entities != nil && len(a.Entities.Countries) > 0 {
		limit := len(a.Entities.Countries)
		if limit > 2 {
			limit = 2
		}
		fmt.Fprintf(&b, "Affects %s. ", strings.Join(a.Entities.Countries[:limit], ", "))
	}

	return strings.TrimSpace(b.String())
}

// SummarizeAll fills Summary and Insight for every article. When an AI
// generator is configured, articles with scraped content get AI summaries
// until the budget runs out; everything else takes the rule-based path.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []feed.Article) []feed.Article {
	aiCount := 0
	for i := range articles {
		a := &articles[i]
		a.Summary = s.summarizeOne(ctx, a, &aiCount)
		a.Insight = s.Insight(*a)
	}

	logger.Info("summaries generated", "count", len(articles), "ai", aiCount)
	return articles
}

func (s *Summarizer) summarizeOne(ctx context.Context, a *feed.Article, aiCount *int) string {
	if s.ai == nil || a.Content == "" {
		return s.Summary(*a)
	}

	key := cache.Key(a.Title, a.Content)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("summary cache hit", "title", a.Title)
		return cached
	}

	if !s.budget.Allow() {
		logger.Warn("ai summary budget exhausted, using rule-based summary", "title", a.Title)
		return s.Summary(*a)
	}

	summary, err := s.ai.Summarize(ctx, a.Title, a.Content)
	if err != nil {
		metrics.Global.IncrementAISummaryFailures()
		logger.Error("ai summary failed, using rule-based summary", "title", a.Title, "error", err)
		return s.Summary(*a)
	}

	_ = s.budget.Use()
	metrics.Global.IncrementAISummaries()
	*aiCount++

	summary = truncate(cleanText(summary), s.maxLength)
	s.cache.Set(key, summary)
	return summary
}

// CategoryDigest builds a Markdown digest for one category: article counts,
// impact distribution and top topics by keyword frequency.
func (s *Summarizer) CategoryDigest(articles []feed.Article, category string) string {
	var inCategory []feed.Article
	for _, a := range articles {
		if a.Category() == category {
			inCategory = append(inCategory, a)
		}
	}
	if len(inCategory) == 0 {
		return fmt.Sprintf("No articles found for category: %s", category)
	}

	impactDist := map[string]int{}
	var allText strings.Builder
	for _, a := range inCategory {
		impactDist[orUnknown(a.ImpactLevel)]++
		allText.WriteString(a.AnalysisText())
		allText.WriteString(" ")
	}

	keywords := trending.ExtractKeywords(allText.String(), trending.DefaultMinKeywordLength)
	counts := map[string]int{}
	for _, k := range keywords {
		counts[k]++
	}
	topTopics := topKeywords(counts, 5)

	var b strings.Builder
	fmt.Fprintf(&b, "## %s News Summary\n\n", titleWord(category))
	fmt.Fprintf(&b, "**Total Articles:** %d\n", len(inCategory))
	fmt.Fprintf(&b, "**High Impact:** %d\n", impactDist["high"])
	fmt.Fprintf(&b, "**Medium Impact:** %d\n", impactDist["medium"])
	fmt.Fprintf(&b, "**Low Impact:** %d\n", impactDist["low"])

	if len(topTopics) > 0 {
		b.WriteString("\n**Top Topics:**\n")
		for _, e := range topTopics {
			fmt.Fprintf(&b, "  - %s: %d mentions\n", titleWord(e.Term), e.Count)
		}
	}
	return b.String()
}

func topKeywords(counts map[string]int, limit int) []trending.Entry {
	entries := make([]trending.Entry, 0, len(counts))
	for term, count := range counts {
		entries = append(entries, trending.Entry{Term: term, Count: count})
	}
	// Same ordering rule as trending: count descending, then lexicographic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Term < entries[j].Term
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func cleanText(text string) string {
	text = specialChars.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

var sentenceEnd = regexp.MustCompile(`[.!?]`)

func truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	sentences := sentenceEnd.Split(text, -1)
	var b strings.Builder
	total := 0

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if total+len(sentence)+1 > maxLength {
			break
		}
		b.WriteString(sentence)
		b.WriteString(". ")
		total += len(sentence) + 1
	}

	if b.Len() == 0 {
		cut := text[:maxLength]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		return cut + "..."
	}
	return strings.TrimSpace(b.String())
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
