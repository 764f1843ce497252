// Package classify tags articles with topic categories and sensitive-topic
// flags using fixed keyword sets.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
)

var healthKeywords = []string{
	"who", "outbreak", "virus", "vaccine", "hospital", "disease", "epidemic",
	"pandemic", "health", "medical", "doctor", "patient", "symptom", "treatment",
	"drug", "medicine", "covid", "flu", "infection", "contagious", "quarantine",
	"cdc", "fda", "clinic", "emergency", "public health", "mortality", "morbidity",
}

var militaryKeywords = []string{
	"missile", "army", "drone", "navy", "defense", "military", "conflict", "war",
	"weapon", "tank", "soldier", "troops", "air force", "marine", "combat",
	"attack", "invasion", "exercise", "battle", "strike", "bombing", "artillery",
	"helicopter", "jet", "submarine", "aircraft carrier", "peacekeeping",
	"ceasefire", "treaty",
}

var economyKeywords = []string{
	"inflation", "bitcoin", "bank", "dollar", "market", "stock", "crypto", "currency",
	"economy", "economic", "finance", "financial", "investment", "trading", "exchange",
	"rate", "interest rate", "central bank", "recession", "growth", "gdp", "fund",
	"price", "cost", "tax", "budget", "debt", "credit", "loan",
}

// sensitiveTopics lists per-category phrases that should raise alerts.
var sensitiveTopics = map[string][]string{
	"health":   {"outbreak", "epidemic", "pandemic", "new virus", "contagious"},
	"military": {"nuclear", "war declaration", "invasion", "attack", "conflict escalation"},
	"economy":  {"crisis", "collapse", "recession", "crash", "bankruptcy", "default"},
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Classifier assigns topic categories by keyword matching. Single words
// match whole tokens; multi-word keywords match as substrings so phrases
// like "interest rate" still count.
type Classifier struct {
	words   map[string]map[string]struct{}
	phrases map[string][]string
}

func New() *Classifier {
	c := &Classifier{
		words:   map[string]map[string]struct{}{},
		phrases: map[string][]string{},
	}
	for category, keywords := range map[string][]string{
		"health":   healthKeywords,
		"military": militaryKeywords,
		"economy":  economyKeywords,
	} {
		c.words[category] = map[string]struct{}{}
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(kw, " ") {
				c.phrases[category] = append(c.phrases[category], kw)
			} else {
				c.words[category][kw] = struct{}{}
			}
		}
	}
	return c
}

// Classify attaches category and sensitivity fields to one article.
func (c *Classifier) Classify(a *feed.Article) {
	text := strings.ToLower(a.AnalysisText())

	scores := c.Scores(text)
	primary, secondary := determineCategories(scores)

	a.PrimaryCategory = primary
	a.SecondaryCategories = secondary
	a.CategoryScores = scores
	a.SensitiveTopics = detectSensitive(text, primary)
	a.Sensitive = len(a.SensitiveTopics) > 0
}

// ClassifyAll classifies articles in place and logs the distribution.
func (c *Classifier) ClassifyAll(articles []feed.Article) []feed.Article {
	distribution := map[string]int{}
	for i := range articles {
		c.Classify(&articles[i])
		distribution[articles[i].PrimaryCategory]++
	}

	metrics.Global.AddArticlesClassified(len(articles))
	logger.Info("articles classified", "count", len(articles))
	for _, category := range sortedKeys(distribution) {
		logger.Debug("category distribution", "category", category, "count", distribution[category])
	}
	return articles
}

// Scores counts keyword hits per category for lowercased text.
func (c *Classifier) Scores(text string) map[string]int {
	tokens := wordPattern.FindAllString(text, -1)

	scores := make(map[string]int, len(c.words))
	for category, set := range c.words {
		score := 0
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				score++
			}
		}
		for _, phrase := range c.phrases[category] {
			score += strings.Count(text, phrase)
		}
		scores[category] = score
	}
	return scores
}

// determineCategories picks the highest-scoring category as primary and any
// other category with hits as secondary. Zero hits everywhere means
// "general". Equal scores break alphabetically for determinism.
func determineCategories(scores map[string]int) (string, []string) {
	type catScore struct {
		category string
		score    int
	}

	ranked := make([]catScore, 0, len(scores))
	for category, score := range scores {
		if score > 0 {
			ranked = append(ranked, catScore{category, score})
		}
	}
	if len(ranked) == 0 {
		return "general", nil
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].category < ranked[j].category
	})

	secondary := make([]string, 0, len(ranked)-1)
	for _, cs := range ranked[1:] {
		secondary = append(secondary, cs.category)
	}
	return ranked[0].category, secondary
}

func detectSensitive(text, category string) []string {
	var detected []string
	for _, topic := range sensitiveTopics[category] {
		if strings.Contains(text, topic) {
			detected = append(detected, topic)
		}
	}
	return detected
}

// Stats summarizes a classified batch.
type Stats struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	SensitiveN    int            `json:"sensitive_count"`
	MultiCategory int            `json:"multi_category_count"`
}

func StatsFor(articles []feed.Article) Stats {
	stats := Stats{
		Total:      len(articles),
		ByCategory: map[string]int{},
	}
	for _, a := range articles {
		stats.ByCategory[a.Category()]++
		if a.Sensitive {
			stats.SensitiveN++
		}
		if len(a.SecondaryCategories) > 0 {
			stats.MultiCategory++
		}
	}
	return stats
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
