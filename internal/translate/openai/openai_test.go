package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/translate"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Messages, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "tiny", req.Model)
		assert.Contains(t, req.Messages[0].Content, "Hindi (hi)")
		assert.Equal(t, "good morning", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" सुप्रभात \n"}}]}`))
	}))
	defer srv.Close()

	tr := New(config.OpenAITranslateConfig{Endpoint: srv.URL, APIKey: "sk-test", Model: "tiny"})
	got, err := tr.Translate(context.Background(), "good morning", "hi")
	require.NoError(t, err)
	assert.Equal(t, "सुप्रभात", got)
}

func TestTranslate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`},
		{"garbage", http.StatusOK, `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(config.OpenAITranslateConfig{Endpoint: srv.URL}).Translate(context.Background(), "hello", "es")
			assert.ErrorIs(t, err, translate.ErrTranslation)
		})
	}
}
