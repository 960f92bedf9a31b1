package google

import (
	"context"
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
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "es", r.URL.Query().Get("tl"))
		assert.Equal(t, "good morning. how are you", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[[["Buenos días. ","good morning. ",null,null,1],["¿Cómo estás?","how are you",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	tr := New(config.GoogleTranslateConfig{Endpoint: srv.URL})
	got, err := tr.Translate(context.Background(), "good morning. how are you", "es")
	require.NoError(t, err)
	assert.Equal(t, "Buenos días. ¿Cómo estás?", got)
	assert.Equal(t, "google", tr.Name())
}

func TestTranslate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not json", http.StatusOK, "<html>"},
		{"empty array", http.StatusOK, "[]"},
		{"no segments", http.StatusOK, "[[],null,\"en\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(config.GoogleTranslateConfig{Endpoint: srv.URL}).Translate(context.Background(), "hello", "hi")
			assert.ErrorIs(t, err, translate.ErrTranslation)
		})
	}
}

func TestTranslate_EmptyText(t *testing.T) {
	_, err := New(config.GoogleTranslateConfig{}).Translate(context.Background(), "  ", "hi")
	assert.ErrorIs(t, err, translate.ErrTranslation)
}
