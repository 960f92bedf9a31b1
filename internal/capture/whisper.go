package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/textutil"
)

// Transcript is the text recognised in an audio clip.
type Transcript struct {
	Text     string
	Language lang.Code
}

// Transcriber turns audio into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, contentType string) (Transcript, error)
}

// Whisper transcribes through a Whisper-compatible HTTP endpoint.
// Two flavors are supported:
//   - "openai": OpenAI-compatible API (OpenAI, whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
type Whisper struct {
	endpoint string
	apiKey   string
	model    string
	flavor   string
	client   *http.Client
}

// NewWhisper creates a transcriber from config.
func NewWhisper(cfg config.WhisperConfig) *Whisper {
	flavor := cfg.Type
	if flavor == "" {
		flavor = "openai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Whisper{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		flavor:   flavor,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (w *Whisper) Name() string { return "whisper-" + w.flavor }

// Transcribe uploads audio and returns the lower-cased transcript.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, contentType string) (Transcript, error) {
	if len(audio) == 0 {
		return Transcript{}, fmt.Errorf("empty audio")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	field := "file"
	reqURL := w.endpoint
	if w.flavor == "asr" {
		field = "audio_file"
		q := make(url.Values)
		q.Set("task", "transcribe")
		q.Set("output", "json")
		q.Set("encode", "true")
		reqURL += "?" + q.Encode()
	}

	part, err := writer.CreateFormFile(field, "audio"+extFromContentType(contentType))
	if err != nil {
		return Transcript{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return Transcript{}, fmt.Errorf("writing audio: %w", err)
	}
	if w.flavor != "asr" {
		if w.model != "" {
			_ = writer.WriteField("model", w.model)
		}
		_ = writer.WriteField("response_format", "verbose_json")
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return Transcript{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Transcript{}, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Transcript{}, fmt.Errorf("decoding transcription: %w", err)
	}

	// OpenAI reports full names ("english"), the ASR service reports codes.
	code, _ := lang.Resolve(result.Language)
	text := textutil.Normalize(result.Text)

	slog.Debug("transcription complete", "backend", w.Name(), "text_length", len(text), "language", code)
	return Transcript{Text: text, Language: code}, nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
