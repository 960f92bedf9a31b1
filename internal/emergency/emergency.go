// Package emergency implements the action fired when a distress signal is
// detected. Handlers are fire-and-forget: the turn never waits for or
// inspects their outcome.
package emergency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nadzzz/joey/internal/lang"
)

// Trigger kinds.
const (
	TriggerPhrase     = "phrase"
	TriggerClassifier = "classifier"
)

// Alert describes one detected distress signal.
type Alert struct {
	TurnID     string    `json:"turn_id"`
	Utterance  string    `json:"utterance"`
	Trigger    string    `json:"trigger"`
	Phrase     string    `json:"phrase,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Language   lang.Code `json:"language"`
	UserName   string    `json:"user_name,omitempty"`
	Time       time.Time `json:"time"`
}

// Handler reacts to a distress signal.
type Handler interface {
	Trigger(ctx context.Context, alert Alert)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, alert Alert)

// Trigger calls f.
func (f HandlerFunc) Trigger(ctx context.Context, alert Alert) { f(ctx, alert) }

// Multi fans an alert out to several handlers in order.
type Multi []Handler

// Trigger calls every handler.
func (m Multi) Trigger(ctx context.Context, alert Alert) {
	for _, h := range m {
		h.Trigger(ctx, alert)
	}
}

// Log simulates dialling an emergency number by logging the alert.
type Log struct {
	Number string
}

// Trigger logs the simulated call.
func (l Log) Trigger(_ context.Context, alert Alert) {
	slog.Warn("simulating call to emergency number",
		"number", l.Number,
		"turn_id", alert.TurnID,
		"trigger", alert.Trigger,
		"phrase", alert.Phrase,
		"confidence", alert.Confidence)
}

// Webhook posts alerts as JSON to an HTTP endpoint in the background.
type Webhook struct {
	url     string
	token   string
	timeout time.Duration
	client  *http.Client
	wg      sync.WaitGroup
}

// NewWebhook creates a webhook handler. token, when set, is sent as a
// bearer token.
func NewWebhook(url, token string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:     url,
		token:   token,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Trigger posts the alert asynchronously. The post outlives the turn's
// context, bounded by the webhook timeout.
func (w *Webhook) Trigger(_ context.Context, alert Alert) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if err := w.post(ctx, alert); err != nil {
			slog.Error("emergency webhook failed", "turn_id", alert.TurnID, "error", err)
			return
		}
		slog.Info("emergency webhook delivered", "turn_id", alert.TurnID)
	}()
}

func (w *Webhook) post(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshalling alert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Close waits for in-flight posts.
func (w *Webhook) Close() error {
	w.wg.Wait()
	return nil
}
