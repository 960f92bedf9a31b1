package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/lang"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("Hello  THERE\n\nhindi mode on\n"), &out, "> ")
	ctx := context.Background()

	got, err := c.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)

	got, err = c.Capture(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hindi mode on", got)

	_, err = c.Capture(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, "> > > > ", out.String())
}

func TestConsole_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	c := NewConsole(pr, nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Capture(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, pw.Close())
	_, err = c.Capture(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWhisper_OpenAIFlavor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.Equal(t, "audio.ogg", hdr.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": " Hindi Mode On ", "language": "english"})
	}))
	defer srv.Close()

	w := NewWhisper(config.WhisperConfig{Endpoint: srv.URL, APIKey: "sk-test", Model: "whisper-1"})
	got, err := w.Transcribe(context.Background(), []byte("OggS"), "audio/ogg")
	require.NoError(t, err)
	assert.Equal(t, Transcript{Text: "hindi mode on", Language: lang.Base}, got)
	assert.Equal(t, "whisper-openai", w.Name())
}

func TestWhisper_ASRFlavor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "transcribe", r.URL.Query().Get("task"))
		_, _, err := r.FormFile("audio_file")
		assert.NoError(t, err)
		_, _ = w.Write([]byte(`{"text":"hola","language":"es"}`))
	}))
	defer srv.Close()

	got, err := NewWhisper(config.WhisperConfig{Endpoint: srv.URL, Type: "asr"}).
		Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, Transcript{Text: "hola", Language: "es"}, got)
}

func TestWhisper_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	w := NewWhisper(config.WhisperConfig{Endpoint: srv.URL})
	_, err := w.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	assert.ErrorContains(t, err, "status 503")

	_, err = w.Transcribe(context.Background(), nil, "audio/wav")
	assert.Error(t, err)
}
