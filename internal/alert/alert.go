// Package alert notifies a Telegram channel about sensitive articles.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
	"github.com/pegasusinfo/newsintel/internal/metrics"
)

const maxAttempts = 3

// Notifier sends alert messages through the Telegram bot API.
type Notifier struct {
	token   string
	chatID  string
	client  *http.Client
	baseURL string
}

func NewNotifier(token, chatID string) *Notifier {
	return &Notifier{
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.telegram.org",
	}
}

// SendSensitiveAlerts builds one message covering all sensitive articles and
// sends it. No sensitive articles means no message and no error.
func (n *Notifier) SendSensitiveAlerts(articles []feed.Article) error {
	var sensitive []feed.Article
	for _, a := range articles {
		if a.Sensitive {
			sensitive = append(sensitive, a)
		}
	}
	if len(sensitive) == 0 {
		return nil
	}

	if err := n.send(formatAlert(sensitive)); err != nil {
		return err
	}
	metrics.Global.IncrementAlertsSent()
	logger.Info("sensitive alert sent", "articles", len(sensitive))
	return nil
}

func formatAlert(articles []feed.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ <b>Sensitive topics detected (%d articles)</b>\n\n", len(articles))

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n", i+1, a.Link, a.Title)
		fmt.Fprintf(&b, "   Category: %s | Topics: %s\n\n",
			a.Category(), strings.Join(a.SensitiveTopics, ", "))
	}
	return strings.TrimSpace(b.String())
}

// send delivers one message with retry and exponential backoff.
func (n *Notifier) send(text string) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := n.sendOnce(text)
		if err == nil {
			return nil
		}

		logger.Warn("alert send failed", "attempt", attempt, "max", maxAttempts, "error", err)
		if attempt < maxAttempts {
			time.Sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return fmt.Errorf("can't send alert after %d tries", maxAttempts)
}

func (n *Notifier) sendOnce(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	resp, err := n.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("alert HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}
