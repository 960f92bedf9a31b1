// Package grpc implements the gRPC transport for Joey.
//
// The service joey.v1.Joey has a single unary method, Dispatch, carrying
// message.Message in and message.DispatchResult out. Payloads use a JSON
// codec selected by the "json" content subtype, so no generated stubs are
// needed. The standard grpc.health.v1 service is registered alongside and
// follows the readiness of the process.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "joey.v1.Joey"

const dispatchMethod = "/" + ServiceName + "/Dispatch"

// DispatchServer is the server API for the Joey service.
type DispatchServer interface {
	Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error)
}

// ServiceDesc describes the Joey service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DispatchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: dispatchHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "joey/v1/joey.proto",
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatchServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: dispatchMethod}
	next := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatchServer).Dispatch(ctx, req.(*message.Message))
	}
	return interceptor(ctx, in, info, next)
}

// Readiness publishes readiness changes to subscribers.
type Readiness interface {
	Subscribe(fn func(ready bool))
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port      int
	readiness Readiness

	mu     sync.Mutex
	server *grpc.Server
}

// New creates a new gRPC transport on the given port. A nil readiness
// reports the service as serving for as long as the server runs.
func New(port int, readiness Readiness) *Transport {
	return &Transport{port: port, readiness: readiness}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve runs the gRPC server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	srv := grpc.NewServer()
	srv.RegisterService(&ServiceDesc, &service{handler: handler})

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	if t.readiness != nil {
		t.readiness.Subscribe(func(ready bool) {
			hs.SetServingStatus(ServiceName, servingStatus(ready))
		})
	} else {
		hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("grpc transport shutting down")
		case <-done:
		}
		hs.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
	return nil
}

func servingStatus(ready bool) healthpb.HealthCheckResponse_ServingStatus {
	if ready {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

type service struct {
	handler transport.Handler
}

func (s *service) Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	transport.Stamp(msg)
	res, err := s.handler(ctx, msg)
	if err != nil {
		slog.Error("dispatch failed", "message_id", msg.ID, "error", err)
		return nil, status.Errorf(codes.Internal, "dispatch: %v", err)
	}
	return res, nil
}
