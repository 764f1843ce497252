package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegasusinfo/newsintel/internal/cache"
	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/ratelimit"
)

type fakeGenerator struct {
	summary string
	err     error
	calls   int
}

func (f *fakeGenerator) Summarize(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func TestSummary_KeepsShortFeedSummary(t *testing.T) {
	s := New(100)
	got := s.Summary(feed.Article{Title: "Title", Summary: "Short summary."})
	assert.Equal(t, "Short summary.", got)
}

func TestSummary_TruncatesLongText(t *testing.T) {
	s := New(60)
	a := feed.Article{
		Title:   "Markets rally",
		Summary: "Stocks rose sharply today. Analysts expect more gains ahead. Volume was heavy across all sectors.",
	}

	got := s.Summary(a)

	assert.LessOrEqual(t, len(got), 60)
	assert.True(t, strings.HasSuffix(got, ".") || strings.HasSuffix(got, "..."))
}

func TestTruncate_SentenceBoundary(t *testing.T) {
	got := truncate("First sentence here. Second sentence follows. Third one.", 25)
	assert.Equal(t, "First sentence here.", got)
}

func TestTruncate_WordCutFallback(t *testing.T) {
	// No sentence fits, so we cut at a word boundary instead.
	got := truncate("averyverylongword another word", 20)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 23)
}

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
}

func TestCleanText(t *testing.T) {
	got := cleanText("Breaking!  news: with * weird $$ chars\n\nand   spaces")
	assert.Equal(t, "Breaking news: with weird chars and spaces", got)
}

func TestInsight(t *testing.T) {
	s := New(500)

	sensitive := feed.Article{
		Sensitive:       true,
		PrimaryCategory: "health",
		Sentiment:       "negative",
	}
	got := s.Insight(sensitive)
	assert.Contains(t, got, "SENSITIVE: this health story needs attention.")
	assert.Contains(t, got, "Concerning trend noted.")

	regular := feed.Article{
		PrimaryCategory: "economy",
		ImpactLevel:     "high",
		Sentiment:       "positive",
		Entities: &feed.Entities{
			Countries: []string{"France", "Germany", "Poland"},
		},
	}
	got = s.Insight(regular)
	assert.Contains(t, got, "HIGH impact economy update.")
	assert.Contains(t, got, "Positive developments indicated.")
	assert.Contains(t, got, "Affects France, Germany.")
	assert.NotContains(t, got, "Poland")
}

func TestSummarizeAll_RuleBasedWithoutAI(t *testing.T) {
	s := New(500)
	articles := s.SummarizeAll(context.Background(), []feed.Article{
		{Title: "A story", Summary: "Something happened.", ImpactLevel: "low"},
	})

	require.Len(t, articles, 1)
	assert.Equal(t, "Something happened.", articles[0].Summary)
	assert.NotEmpty(t, articles[0].Insight)
}

func TestSummarizeAll_UsesAIForScrapedContent(t *testing.T) {
	gen := &fakeGenerator{summary: "AI generated summary."}
	budget := ratelimit.NewBudget(10)
	s := New(500).WithAI(gen, budget, cache.New(time.Hour))

	articles := s.SummarizeAll(context.Background(), []feed.Article{
		{Title: "Scraped", Content: "full article body", Summary: "feed summary"},
		{Title: "Not scraped", Summary: "feed summary only"},
	})

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "AI generated summary.", articles[0].Summary)
	assert.Equal(t, "feed summary only", articles[1].Summary)
}

func TestSummarizeAll_FallsBackOnAIError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	budget := ratelimit.NewBudget(10)
	s := New(500).WithAI(gen, budget, cache.New(time.Hour))

	articles := s.SummarizeAll(context.Background(), []feed.Article{
		{Title: "Scraped", Content: "full article body", Summary: "feed summary"},
	})

	assert.Equal(t, "feed summary", articles[0].Summary)
}

func TestSummarizeAll_RespectsBudget(t *testing.T) {
	gen := &fakeGenerator{summary: "AI summary."}
	budget := ratelimit.NewBudget(1)
	s := New(500).WithAI(gen, budget, cache.New(time.Hour))

	articles := s.SummarizeAll(context.Background(), []feed.Article{
		{Title: "First", Content: "body one", Summary: "fallback one"},
		{Title: "Second", Content: "body two", Summary: "fallback two"},
	})

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "AI summary.", articles[0].Summary)
	assert.Equal(t, "fallback two", articles[1].Summary)
}

func TestSummarizeAll_CachesAISummaries(t *testing.T) {
	gen := &fakeGenerator{summary: "AI summary."}
	budget := ratelimit.NewBudget(10)
	s := New(500).WithAI(gen, budget, cache.New(time.Hour))

	input := []feed.Article{{Title: "Same", Content: "same body"}}
	s.SummarizeAll(context.Background(), input)
	s.SummarizeAll(context.Background(), input)

	assert.Equal(t, 1, gen.calls)
}

func TestCategoryDigest(t *testing.T) {
	s := New(500)
	articles := []feed.Article{
		{Title: "Vaccine trial results announced", PrimaryCategory: "health", ImpactLevel: "high"},
		{Title: "Vaccine rollout expands nationwide", PrimaryCategory: "health", ImpactLevel: "low"},
		{Title: "Markets rally on earnings", PrimaryCategory: "economy", ImpactLevel: "medium"},
	}

	digest := s.CategoryDigest(articles, "health")

	assert.Contains(t, digest, "## Health News Summary")
	assert.Contains(t, digest, "**Total Articles:** 2")
	assert.Contains(t, digest, "**High Impact:** 1")
	assert.Contains(t, digest, "Vaccine: 2 mentions")
}

func TestCategoryDigest_NoArticles(t *testing.T) {
	s := New(500)
	digest := s.CategoryDigest(nil, "military")
	assert.Equal(t, "No articles found for category: military", digest)
}
