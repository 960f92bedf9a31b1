// Package openai implements the Translator using an OpenAI-compatible Chat
// Completions endpoint. The default endpoint is OpenAI's; point it at Ollama,
// vLLM or llama.cpp server for a self-hosted model.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/translate"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// Translator asks a chat model for a translation.
type Translator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// New creates a chat translator from config.
func New(cfg config.OpenAITranslateConfig) *Translator {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultChatURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Translator{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "openai" }

// Translate sends text and the target language to the chat endpoint.
func (t *Translator) Translate(ctx context.Context, text string, target lang.Code) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", translate.ErrTranslation)
	}

	reqBody := chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(target)},
			{Role: "user", Content: text},
		},
		Temperature: 0,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshalling chat request: %w", translate.ErrTranslation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: creating chat request: %w", translate.ErrTranslation, err)
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat request: %w", translate.ErrTranslation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: chat failed (status %d): %s", translate.ErrTranslation, resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding chat response: %w", translate.ErrTranslation, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned from chat API", translate.ErrTranslation)
	}

	out := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: empty translation", translate.ErrTranslation)
	}

	slog.Debug("chat translation complete", "target", target, "model", t.model)
	return out, nil
}

// --- Internal types and helpers ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func systemPrompt(target lang.Code) string {
	var sb strings.Builder
	sb.WriteString("You are a translation engine for a voice assistant.\n")
	sb.WriteString("Translate the user's message into " + lang.Name(target) + " (" + string(target) + ").\n")
	sb.WriteString("Reply with the translation only: no quotes, notes or transliteration.\n")
	return sb.String()
}
