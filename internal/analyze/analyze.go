// Package analyze attaches impact, sentiment and entity fields to articles.
package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
)

var impactKeywords = map[string][]string{
	"high": {"crisis", "emergency", "disaster", "deadly", "fatal", "severe",
		"collapse", "critical", "urgent", "warning", "threat", "attack"},
	"medium": {"significant", "major", "important", "serious", "concern",
		"issue", "problem", "challenge", "risk", "developing"},
	"low": {"update", "report", "statement", "announcement", "minor",
		"small", "slight", "normal", "routine"},
}

var positiveWords = []string{"improvement", "growth", "success", "positive", "benefit",
	"recovery", "increase", "boost", "advantage", "gain"}

var negativeWords = []string{"decline", "loss", "crisis", "failure", "negative",
	"decrease", "fall", "threat", "risk", "danger", "concern"}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(New York|Washington|London|Paris|Tokyo|Beijing|Moscow|Berlin|Rome)\b`),
	regexp.MustCompile(`(?i)\b(United States|USA|US|UK|Russia|China|India|Brazil|Australia)\b`),
	regexp.MustCompile(`(?i)\b(California|Texas|Florida)\b`),
}

var organizationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(WHO|CDC|FDA|United Nations|NATO|World Bank|IMF)\b`),
	regexp.MustCompile(`(?i)\b(Federal Reserve|European Central Bank)\b`),
}

var countries = []string{
	"afghanistan", "albania", "algeria", "argentina", "australia",
	"austria", "bangladesh", "belgium", "brazil", "bulgaria",
	"canada", "chile", "china", "colombia", "croatia", "cuba",
	"czech republic", "denmark", "egypt", "estonia", "finland",
	"france", "germany", "greece", "hungary", "iceland", "india",
	"indonesia", "iran", "iraq", "ireland", "israel", "italy",
	"japan", "jordan", "kazakhstan", "kenya", "kuwait", "latvia",
	"lebanon", "lithuania", "luxembourg", "malaysia", "mexico",
	"morocco", "myanmar", "netherlands", "new zealand", "nigeria",
	"north korea", "norway", "pakistan", "peru", "philippines",
	"poland", "portugal", "qatar", "romania", "russia", "saudi arabia",
	"serbia", "singapore", "slovakia", "slovenia", "south africa",
	"south korea", "spain", "sweden", "switzerland", "syria", "taiwan",
	"thailand", "turkey", "ukraine", "united arab emirates",
	"united kingdom", "uk", "vietnam", "yemen",
}

type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze fills the impact, entity and sentiment fields of one article.
func (an *Analyzer) Analyze(a *feed.Article) {
	text := strings.ToLower(a.AnalysisText())

	a.ImpactLevel = assessImpact(text)
	a.Entities = extractEntities(text)
	a.Sentiment = assessSentiment(text)
}

// AnalyzeAll analyzes articles in place.
func (an *Analyzer) AnalyzeAll(articles []feed.Article) []feed.Article {
	for i := range articles {
		an.Analyze(&articles[i])
	}
	logger.Info("articles analyzed", "count", len(articles))
	return articles
}

// assessImpact rates an article high on any high-impact keyword, medium on
// two or more medium keywords, low otherwise.
func assessImpact(text string) string {
	highScore := countMatches(text, impactKeywords["high"])
	mediumScore := countMatches(text, impactKeywords["medium"])

	switch {
	case highScore > 0:
		return "high"
	case mediumScore > 1:
		return "medium"
	default:
		return "low"
	}
}

func assessSentiment(text string) string {
	posCount := countMatches(text, positiveWords)
	negCount := countMatches(text, negativeWords)

	switch {
	case negCount > posCount:
		return "negative"
	case posCount > negCount:
		return "positive"
	default:
		return "neutral"
	}
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func extractEntities(text string) *feed.Entities {
	return &feed.Entities{
		Locations:     matchPatterns(text, locationPatterns),
		Organizations: matchPatterns(text, organizationPatterns),
		Countries:     matchCountries(text),
	}
}

func matchPatterns(text string, patterns []*regexp.Regexp) []string {
	var found []string
	seen := map[string]struct{}{}

	for _, pattern := range patterns {
		for _, match := range pattern.FindAllString(text, -1) {
			key := strings.ToLower(match)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			found = append(found, match)
		}
	}
	return found
}

func matchCountries(text string) []string {
	var found []string
	for _, country := range countries {
		if strings.Contains(text, country) {
			found = append(found, titleCase(country))
		}
	}
	return found
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Summary aggregates analysis results over a batch.
type Summary struct {
	TotalArticles     int                       `json:"total_articles"`
	ImpactDist        map[string]int            `json:"impact_distribution"`
	SentimentDist     map[string]int            `json:"sentiment_distribution"`
	TopEntities       map[string][]EntityCount  `json:"top_entities"`
	HighImpactCount   int                       `json:"high_impact_count"`
	NegativeSentiment int                       `json:"negative_sentiment_count"`
}

// EntityCount pairs an entity with its mention count across the batch.
type EntityCount struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// Summarize computes the corpus-level analysis summary.
func (an *Analyzer) Summarize(articles []feed.Article) Summary {
	s := Summary{
		TotalArticles: len(articles),
		ImpactDist:    map[string]int{},
		SentimentDist: map[string]int{},
		TopEntities:   map[string][]EntityCount{},
	}

	entityCounts := map[string]map[string]int{
		"locations":     {},
		"organizations": {},
		"countries":     {},
	}

	for _, a := range articles {
		s.ImpactDist[orUnknown(a.ImpactLevel)]++
		s.SentimentDist[orUnknown(a.Sentiment)]++
		if a.Entities == nil {
			continue
		}
		for _, e := range a.Entities.Locations {
			entityCounts["locations"][e]++
		}
		for _, e := range a.Entities.Organizations {
			entityCounts["organizations"][e]++
		}
		for _, e := range a.Entities.Countries {
			entityCounts["countries"][e]++
		}
	}

	s.HighImpactCount = s.ImpactDist["high"]
	s.NegativeSentiment = s.SentimentDist["negative"]

	for entityType, counts := range entityCounts {
		s.TopEntities[entityType] = topEntities(counts, 10)
	}
	return s
}

func topEntities(counts map[string]int, limit int) []EntityCount {
	top := make([]EntityCount, 0, len(counts))
	for entity, count := range counts {
		top = append(top, EntityCount{Entity: entity, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Entity < top[j].Entity
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
