package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nadzzz/joey/internal/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echo answers with the received message folded into the result.
func echo(got *message.Message) func(context.Context, *message.Message) (*message.DispatchResult, error) {
	return func(_ context.Context, msg *message.Message) (*message.DispatchResult, error) {
		*got = *msg
		return &message.DispatchResult{MessageID: msg.ID, Transcript: msg.Text, ResponseText: "ok"}, nil
	}
}

func TestDispatch_JSON(t *testing.T) {
	var got message.Message
	srv := httptest.NewServer(Handler(echo(&got)))
	defer srv.Close()

	body := `{"id":"abc","source":"phone","text":"hindi mode on","response_mode":"text"}`
	resp, err := srv.Client().Post(srv.URL+"/dispatch", "application/json; charset=utf-8", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res message.DispatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "abc", res.MessageID)
	assert.Equal(t, "hindi mode on", res.Transcript)

	assert.Equal(t, "phone", got.Source)
	assert.Equal(t, message.ResponseModeText, got.ResponseMode)
	assert.False(t, got.Timestamp.IsZero())
}

func TestDispatch_RawAudio(t *testing.T) {
	var got message.Message
	srv := httptest.NewServer(Handler(echo(&got)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/dispatch", bytes.NewReader([]byte("RIFF....")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set(HeaderSource, "kitchen")
	req.Header.Set(HeaderResponseMode, "audio")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("RIFF...."), got.Audio)
	assert.Equal(t, "audio/wav", got.ContentType)
	assert.Equal(t, "kitchen", got.Source)
	assert.Equal(t, message.ResponseModeAudio, got.ResponseMode)
	assert.NotEmpty(t, got.ID)
}

func TestDispatch_Errors(t *testing.T) {
	failing := func(context.Context, *message.Message) (*message.DispatchResult, error) {
		return nil, errors.New("boom")
	}

	tests := []struct {
		name        string
		contentType string
		body        string
		handler     func(context.Context, *message.Message) (*message.DispatchResult, error)
		status      int
	}{
		{"bad json", "application/json", "{", echo(&message.Message{}), http.StatusBadRequest},
		{"no content type", "", "hello", echo(&message.Message{}), http.StatusBadRequest},
		{"handler error", "application/json", `{"text":"hi"}`, failing, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/dispatch", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			Handler(tt.handler).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestDispatch_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(echo(&message.Message{})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dispatch", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(echo(&message.Message{})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/dispatch"`)
}
