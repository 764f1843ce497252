// Package gemini wraps the Gemini API for article summarization.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName      = "gemini-1.5-flash"
	maxPromptRunes = 6000
	minSentenceCut = 1200
)

type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize asks the model for a compact neutral summary of one article.
func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	model := c.client.GenerativeModel(modelName)

	content = limitPrompt(content)
	prompt := fmt.Sprintf(`Summarize this news article in plain neutral English.

ARTICLE:
Title: %s
Content: %s

REQUIREMENTS:
- At most 3 sentences and 500 characters.
- No opinions, no introductions like "This article is about".
- Keep proper names of people, places and organizations unchanged.

Reply with the summary text only.`, title, content)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := extractText(resp)
	if summary == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return summary, nil
}

// limitPrompt normalizes whitespace and caps content size, preferring to cut
// at a sentence end.
func limitPrompt(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")

	if utf8.RuneCountInString(content) <= maxPromptRunes {
		return content
	}

	runes := []rune(content)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > minSentenceCut {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
