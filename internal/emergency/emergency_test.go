package emergency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWebhook_PostsAlert(t *testing.T) {
	got := make(chan Alert, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		var a Alert
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		got <- a
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "s3cret", time.Second)
	wh.Trigger(context.Background(), Alert{TurnID: "t1", Utterance: "sos", Trigger: TriggerPhrase, Phrase: "sos"})
	require.NoError(t, wh.Close())

	select {
	case a := <-got:
		assert.Equal(t, "t1", a.TurnID)
		assert.Equal(t, TriggerPhrase, a.Trigger)
	default:
		t.Fatal("webhook not delivered")
	}
	srv.CloseClientConnections()
}

func TestWebhook_OutlivesTurnContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	wh := NewWebhook(srv.URL, "", time.Second)
	wh.Trigger(ctx, Alert{TurnID: "t2"})
	cancel()
	require.NoError(t, wh.Close())
	assert.Equal(t, int32(1), hits.Load())
	srv.CloseClientConnections()
}

func TestWebhook_ServerErrorIsLoggedNotReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "", time.Second)
	wh.Trigger(context.Background(), Alert{TurnID: "t3"})
	assert.NoError(t, wh.Close())
	srv.CloseClientConnections()
}

func TestMulti(t *testing.T) {
	var calls []string
	m := Multi{
		HandlerFunc(func(context.Context, Alert) { calls = append(calls, "a") }),
		Log{Number: "112"},
		HandlerFunc(func(context.Context, Alert) { calls = append(calls, "b") }),
	}
	m.Trigger(context.Background(), Alert{TurnID: "t4"})
	assert.Equal(t, []string{"a", "b"}, calls)
}
