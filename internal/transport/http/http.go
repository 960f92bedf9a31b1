// Package http implements the HTTP transport for Joey.
//
// POST /dispatch accepts a JSON message (text or base64 audio) or raw audio
// bytes and returns the resolved turn. Swagger UI is served under /swagger/.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/joey/docs"
	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/transport"
)

// MaxAudioBytes caps raw audio uploads.
const MaxAudioBytes = 25 << 20

// Header names for raw audio uploads.
const (
	HeaderSource       = "X-Joey-Source"
	HeaderResponseMode = "X-Joey-Response-Mode"
)

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the HTTP routes bound to handler.
func Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /dispatch", func(w http.ResponseWriter, r *http.Request) {
		handleDispatch(w, r, handler)
	})

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleDispatch processes a POST /dispatch request.
//
// @Summary     Resolve one utterance
// @Description Accepts a JSON message (pre-transcribed text or base64 audio) or raw audio bytes.
// @Description The utterance runs through the override chain and the intent classifier; the
// @Description resolved turn and Joey's replies are returned in the requested response mode.
// @Tags        dispatch
// @Accept      json
// @Accept      audio/wav
// @Accept      audio/ogg
// @Produce     json
// @Param       message  body      message.Message  true  "Dispatch request (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-Joey-Source         header  string  false  "Sender identifier (used with raw audio uploads)"
// @Param       X-Joey-Response-Mode  header  string  false  "none, text, audio or text+audio (used with raw audio uploads)"
// @Success     200  {object}  message.DispatchResult  "Resolved turn"
// @Failure     400  {string}  string  "Invalid request body or headers"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /dispatch [post]
func handleDispatch(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var msg message.Message

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	case "":
		http.Error(w, "missing content type", http.StatusBadRequest)
		return
	default:
		audio, err := io.ReadAll(io.LimitReader(r.Body, MaxAudioBytes))
		if err != nil {
			http.Error(w, "reading audio: "+err.Error(), http.StatusBadRequest)
			return
		}
		msg.Audio = audio
		msg.ContentType = mediaType
		msg.Source = r.Header.Get(HeaderSource)
		msg.ResponseMode = message.ResponseMode(r.Header.Get(HeaderResponseMode))
	}
	transport.Stamp(&msg)

	result, err := handler(r.Context(), &msg)
	if err != nil {
		slog.Error("dispatch failed", "message_id", msg.ID, "error", err)
		http.Error(w, "dispatch error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}
