// Package transport defines the interface for the network surfaces that
// feed utterances to Joey.
//
// Each transport (HTTP, gRPC) accepts a message.Message, hands it to the
// dispatcher's Handle and returns the DispatchResult to the caller. The
// dispatcher doesn't care how messages arrive.
package transport

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/joey/internal/message"
)

// Handler is a function that processes an incoming message and returns a result.
// The dispatcher provides this handler to each transport.
type Handler func(ctx context.Context, msg *message.Message) (*message.DispatchResult, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting incoming messages and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

// Stamp fills in the message ID and receive time when the caller left
// them empty.
func Stamp(msg *message.Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
}
