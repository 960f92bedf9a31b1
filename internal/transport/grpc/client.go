package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nadzzz/joey/internal/message"
)

// Client calls a remote Joey over gRPC.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target (host:port). Extra options are appended
// after the defaults.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Dispatch sends one message and returns the resolved turn.
func (c *Client) Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	res := new(message.DispatchResult)
	if err := c.conn.Invoke(ctx, dispatchMethod, msg, res); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	return res, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }
