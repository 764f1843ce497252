package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegasusinfo/newsintel/internal/feed"
)

func TestSendSensitiveAlerts(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("test-token", "12345")
	n.baseURL = srv.URL

	err := n.SendSensitiveAlerts([]feed.Article{
		{Title: "Regular story"},
		{
			Title:           "Outbreak reported",
			Link:            "https://example.com/outbreak",
			PrimaryCategory: "health",
			Sensitive:       true,
			SensitiveTopics: []string{"outbreak"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "12345", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])

	text, _ := got["text"].(string)
	assert.Contains(t, text, "Sensitive topics detected (1 articles)")
	assert.Contains(t, text, "Outbreak reported")
	assert.Contains(t, text, "Topics: outbreak")
	assert.NotContains(t, text, "Regular story")
}

func TestSendSensitiveAlerts_NoSensitiveArticles(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("test-token", "12345")
	n.baseURL = srv.URL

	err := n.SendSensitiveAlerts([]feed.Article{{Title: "Calm day"}})
	require.NoError(t, err)
	assert.Equal(t, 0, requests)
}

func TestFormatAlert(t *testing.T) {
	text := formatAlert([]feed.Article{
		{Title: "First", Link: "https://example.com/1", PrimaryCategory: "military", SensitiveTopics: []string{"invasion"}},
		{Title: "Second", Link: "https://example.com/2", SensitiveTopics: []string{"crisis", "recession"}},
	})

	assert.Contains(t, text, "(2 articles)")
	assert.Contains(t, text, `1. <a href="https://example.com/1">First</a>`)
	assert.Contains(t, text, "Category: military | Topics: invasion")
	assert.Contains(t, text, "Category: general | Topics: crisis, recession")
}
