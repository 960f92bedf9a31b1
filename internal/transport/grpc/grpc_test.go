package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// readiness is a settable Readiness.
type readiness struct {
	mu    sync.Mutex
	ready bool
	subs  []func(bool)
}

func (r *readiness) Subscribe(fn func(bool)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	ready := r.ready
	r.mu.Unlock()
	fn(ready)
}

func (r *readiness) set(ready bool) {
	r.mu.Lock()
	r.ready = ready
	subs := append([]func(bool){}, r.subs...)
	r.mu.Unlock()
	for _, fn := range subs {
		fn(ready)
	}
}

// serve starts tr on an in-memory listener and returns a dial option for it.
func serve(t *testing.T, tr *Transport, handler transport.Handler) grpc.DialOption {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tr.Serve(ctx, lis, handler) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errc)
	})
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func newClient(t *testing.T, dial grpc.DialOption) *Client {
	t.Helper()
	c, err := NewClient("passthrough:///bufnet", dial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDispatch(t *testing.T) {
	var got message.Message
	handler := func(_ context.Context, msg *message.Message) (*message.DispatchResult, error) {
		got = *msg
		return &message.DispatchResult{
			MessageID:    msg.ID,
			Transcript:   msg.Text,
			Turn:         &message.TurnResult{Intent: "greet", Replies: []message.Reply{{Text: "Hello!", Lang: "en"}}},
			ResponseText: "Hello!",
		}, nil
	}
	c := newClient(t, serve(t, New(0, nil), handler))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := c.Dispatch(ctx, &message.Message{Source: "robot", Text: "hello", Audio: []byte{1, 2, 3}})
	require.NoError(t, err)

	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, "hello", res.Transcript)
	assert.Equal(t, "Hello!", res.ResponseText)
	require.NotNil(t, res.Turn)
	assert.Equal(t, "greet", string(res.Turn.Intent))

	assert.Equal(t, "robot", got.Source)
	assert.Equal(t, []byte{1, 2, 3}, got.Audio)
	assert.Equal(t, res.MessageID, got.ID)
}

func TestDispatch_HandlerError(t *testing.T) {
	handler := func(context.Context, *message.Message) (*message.DispatchResult, error) {
		return nil, errors.New("boom")
	}
	c := newClient(t, serve(t, New(0, nil), handler))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Dispatch(ctx, &message.Message{Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealth_FollowsReadiness(t *testing.T) {
	r := &readiness{}
	dial := serve(t, New(0, r), func(context.Context, *message.Message) (*message.DispatchResult, error) {
		return &message.DispatchResult{}, nil
	})

	conn, err := grpc.NewClient("passthrough:///bufnet", dial, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	hc := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
	r.set(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check())
}
