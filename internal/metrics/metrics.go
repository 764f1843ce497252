package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	ArticlesClassified int64
	TrendingRuns       int64
	AISummaries        int64
	AISummaryFailures  int64
	ExportsWritten     int64
	AlertsSent         int64

	// Timings
	LastPipelineTime    time.Duration
	TotalPipelineTime   time.Duration
	AveragePipelineTime time.Duration
	PipelineRuns        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddArticlesClassified(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesClassified += int64(n)
}

func (m *Metrics) IncrementTrendingRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendingRuns++
}

func (m *Metrics) IncrementAISummaries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AISummaries++
}

func (m *Metrics) IncrementAISummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AISummaryFailures++
}

func (m *Metrics) AddExportsWritten(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExportsWritten += int64(n)
}

func (m *Metrics) IncrementAlertsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsSent++
}

func (m *Metrics) RecordPipelineTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPipelineTime = duration
	m.TotalPipelineTime += duration
	m.PipelineRuns++
	m.AveragePipelineTime = m.TotalPipelineTime / time.Duration(m.PipelineRuns)
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":         m.ArticlesFetched,
		"duplicates_filtered":      m.DuplicatesFiltered,
		"articles_classified":      m.ArticlesClassified,
		"trending_runs":            m.TrendingRuns,
		"ai_summaries":             m.AISummaries,
		"ai_summary_failures":      m.AISummaryFailures,
		"exports_written":          m.ExportsWritten,
		"alerts_sent":              m.AlertsSent,
		"last_pipeline_time_ms":    m.LastPipelineTime.Milliseconds(),
		"average_pipeline_time_ms": m.AveragePipelineTime.Milliseconds(),
		"last_run_time":            m.LastRunTime.Format(time.RFC3339),
		"last_error_time":          m.LastErrorTime.Format(time.RFC3339),
		"last_error":               m.LastError,
		"is_healthy":               m.IsHealthy,
	}
}
