package feed

import "time"

// Article is one syndicated news item. The fetcher fills the source fields;
// later pipeline stages attach classification, analysis and summary fields.
type Article struct {
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	Link         string     `json:"link"`
	Published    *time.Time `json:"published_date"`
	Source       string     `json:"source"`
	CategoryHint string     `json:"category_hint"`
	FetchedAt    time.Time  `json:"fetched_at"`

	// Full article body when the scraper has been run for this item.
	Content string `json:"-"`

	// Set by classify.
	PrimaryCategory     string         `json:"primary_category,omitempty"`
	SecondaryCategories []string       `json:"secondary_categories,omitempty"`
	CategoryScores      map[string]int `json:"category_scores,omitempty"`
	SensitiveTopics     []string       `json:"sensitive_topics,omitempty"`
	Sensitive           bool           `json:"is_sensitive"`

	// Set by analyze.
	ImpactLevel string    `json:"impact_level,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
	Entities    *Entities `json:"entities,omitempty"`

	// Set by trending scoring and summarize.
	TrendingScore float64 `json:"trending_score"`
	Insight       string  `json:"insight,omitempty"`
}

// Entities holds named entities recognized in the article text.
type Entities struct {
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
	Countries     []string `json:"countries"`
}

// AnalysisText is the text every analysis stage operates on.
func (a Article) AnalysisText() string {
	return a.Title + " " + a.Summary
}

// Category returns the primary category, defaulting to "general".
func (a Article) Category() string {
	if a.PrimaryCategory == "" {
		return "general"
	}
	return a.PrimaryCategory
}
