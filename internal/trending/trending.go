// Package trending detects trending topics across a sliding time window.
//
// The detector is a pure function over its inputs: it never mutates the
// articles it is given, holds no process-wide state and does no logging, so
// independent Detect calls are safe to run concurrently. Callers log the
// returned Result if they want observability.
package trending

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pegasusinfo/newsintel/internal/feed"
)

// DefaultMinKeywordLength is the minimum token length for keyword extraction.
const DefaultMinKeywordLength = 3

const (
	topKeywords    = 10
	topPhrases     = 5
	topPerCategory = 5
)

// wordPattern matches maximal runs of ASCII letters. Tokens glued to digits
// ("covid19") have no word boundary and are dropped entirely.
var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "with": {}, "this": {}, "that": {},
	"have": {}, "from": {}, "they": {}, "will": {}, "would": {}, "there": {},
	"their": {}, "what": {}, "which": {}, "when": {}, "make": {}, "like": {},
	"into": {}, "year": {}, "your": {}, "just": {}, "over": {}, "also": {},
	"such": {}, "because": {}, "these": {}, "first": {}, "being": {},
	"after": {}, "most": {}, "than": {}, "said": {}, "has": {}, "been": {},
	"were": {}, "its": {}, "his": {}, "she": {}, "him": {}, "them": {},
	"says": {}, "say": {}, "new": {}, "time": {},
}

// Entry is one ranked term with its occurrence count. Ranked lists serialize
// as ordered sequences because rank order is meaningful.
type Entry struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Result is an immutable snapshot produced by one Detect call. Every entry
// in the ranked lists has Count >= Threshold.
type Result struct {
	Keywords         []Entry            `json:"trending_keywords"`
	Phrases          []Entry            `json:"trending_phrases"`
	ByCategory       map[string][]Entry `json:"trending_by_category"`
	WindowHours      int                `json:"time_window_hours"`
	Threshold        int                `json:"threshold"`
	ArticlesAnalyzed int                `json:"total_articles_analyzed"`
}

// Detector runs trending detection with a fixed threshold and time window.
type Detector struct {
	Threshold   int
	WindowHours int

	now func() time.Time
}

// NewDetector returns a detector. A threshold <= 0 means every observed term
// qualifies; a window <= 0 produces empty results because the cutoff is not
// in the past.
func NewDetector(threshold, windowHours int) *Detector {
	return &Detector{
		Threshold:   threshold,
		WindowHours: windowHours,
		now:         time.Now,
	}
}

// ExtractKeywords tokenizes text into lowercase keywords of at least
// minLength letters, dropping stop words. Order and duplicates are
// preserved: multiplicity across the corpus is the trending signal.
func ExtractKeywords(text string, minLength int) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if len(w) < minLength {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// ExtractPhrases derives space-joined 2-word and 3-word phrases from the
// keyword sequence of one text. All consecutive 2-grams come first, then all
// 3-grams when at least 3 keywords exist. minPhraseLength does not gate the
// 2-gram pass; the parameter is kept for signature compatibility.
func ExtractPhrases(text string, minPhraseLength int) []string {
	_ = minPhraseLength

	words := ExtractKeywords(text, DefaultMinKeywordLength)
	var phrases []string

	if len(words) >= 2 {
		for i := 0; i+1 < len(words); i++ {
			phrases = append(phrases, words[i]+" "+words[i+1])
		}
	}
	if len(words) >= 3 {
		for i := 0; i+2 < len(words); i++ {
			phrases = append(phrases, words[i]+" "+words[i+1]+" "+words[i+2])
		}
	}
	return phrases
}

// Detect computes trending keywords and phrases over articles published
// within the detector's time window. Articles without a publish time are
// excluded from the window, not treated as errors. An empty window yields a
// result with empty ranked lists and the configured metadata.
func (d *Detector) Detect(articles []feed.Article) Result {
	res := Result{
		ByCategory:  map[string][]Entry{},
		WindowHours: d.WindowHours,
		Threshold:   d.Threshold,
	}

	cutoff := d.now().Add(-time.Duration(d.WindowHours) * time.Hour)

	keywordCounts := map[string]int{}
	phraseCounts := map[string]int{}
	categoryCounts := map[string]map[string]int{}

	for _, a := range articles {
		if a.Published == nil || a.Published.Before(cutoff) {
			continue
		}
		res.ArticlesAnalyzed++

		text := a.AnalysisText()
		keywords := ExtractKeywords(text, DefaultMinKeywordLength)
		for _, k := range keywords {
			keywordCounts[k]++
		}
		for _, p := range ExtractPhrases(text, 2) {
			phraseCounts[p]++
		}

		cat := a.Category()
		if categoryCounts[cat] == nil {
			categoryCounts[cat] = map[string]int{}
		}
		for _, k := range keywords {
			categoryCounts[cat][k]++
		}
	}

	res.Keywords = rank(keywordCounts, d.Threshold, topKeywords)
	res.Phrases = rank(phraseCounts, d.Threshold, topPhrases)
	for cat, counts := range categoryCounts {
		res.ByCategory[cat] = rank(counts, d.Threshold, topPerCategory)
	}

	return res
}

// Score rates how strongly an article matches a trending result: each
// occurrence of a trending keyword counts, five or more occurrences saturate
// at 1.0. The score is rounded to 2 decimals; zero matches score exactly 0.
func (d *Detector) Score(a feed.Article, res Result) float64 {
	keywords := ExtractKeywords(a.AnalysisText(), DefaultMinKeywordLength)

	trendingSet := make(map[string]struct{}, len(res.Keywords))
	for _, e := range res.Keywords {
		trendingSet[e.Term] = struct{}{}
	}

	matches := 0
	for _, k := range keywords {
		if _, ok := trendingSet[k]; ok {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}

	score := math.Min(float64(matches)/5, 1)
	return math.Round(score*100) / 100
}

// rank filters counts by threshold and sorts descending by count. Ties break
// lexicographically ascending on the term so results are deterministic.
func rank(counts map[string]int, threshold, limit int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for term, count := range counts {
		if count >= threshold {
			entries = append(entries, Entry{Term: term, Count: count})
		}
	}

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
