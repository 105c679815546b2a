package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// webhookEvents are forwarded to the webhook. Per-application progress and
// comment bookkeeping only go to the log.
var webhookEvents = map[EventType]bool{
	EventRunCompleted: true,
	EventRunFailed:    true,
	EventPRCreated:    true,
}

// WebhookNotifier posts run outcomes and created pull requests to an HTTP
// endpoint as JSON.
type WebhookNotifier struct {
	url    string
	token  string
	client *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookToken sends token as a bearer credential on every request.
func WithWebhookToken(token string) WebhookOption {
	return func(n *WebhookNotifier) { n.token = token }
}

// WithWebhookClient replaces the default HTTP client.
func WithWebhookClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) { n.client = client }
}

// NewWebhookNotifier creates a webhook notifier for url.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// webhookPayload is the posted body. Text gives chat-style receivers a
// ready-made line.
type webhookPayload struct {
	Event
	Text string `json:"text"`
}

// Notify implements Notifier. Events outside webhookEvents are dropped.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if !webhookEvents[event.Type] {
		return nil
	}

	body, err := json.Marshal(webhookPayload{Event: event, Text: summaryLine(event)})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s webhook: %w", event.Type, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func summaryLine(event Event) string {
	switch event.Type {
	case EventPRCreated:
		return fmt.Sprintf("%s: pull request in %s %s", event.App, event.Repo, event.URL)
	case EventRunFailed:
		return fmt.Sprintf("appforge run %s failed: %s", event.RunID, event.Message)
	default:
		return fmt.Sprintf("appforge run %s: %s", event.RunID, event.Message)
	}
}
