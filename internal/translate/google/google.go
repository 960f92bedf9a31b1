// Package google implements the Translator using Google's public
// translate_a endpoint (client=gtx), the same endpoint browser extensions
// and the deep-translator family of libraries use. No API key is required.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/translate"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Translator calls the gtx endpoint.
type Translator struct {
	endpoint string
	client   *http.Client
}

// New creates a Google translator from config.
func New(cfg config.GoogleTranslateConfig) *Translator {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Translator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "google" }

// Translate sends text to the gtx endpoint with source language detection.
func (t *Translator) Translate(ctx context.Context, text string, target lang.Code) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", translate.ErrTranslation)
	}

	q := make(url.Values)
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", string(target))
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", translate.ErrTranslation, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: google request: %w", translate.ErrTranslation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: google status %d: %s", translate.ErrTranslation, resp.StatusCode, body)
	}

	out, err := parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", translate.ErrTranslation, err)
	}

	slog.Debug("google translation complete", "target", target, "text_length", len(out))
	return out, nil
}

// parse reads the nested array reply: [[["translated","source",...],...],...].
// The first element lists sentence segments; their first fields concatenate
// to the translation.
func parse(r io.Reader) (string, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return "", fmt.Errorf("decoding google response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty google response")
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("decoding google segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated text in google response")
	}
	return sb.String(), nil
}
