package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/transport/frontends"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

var _ frontends.Frontend = (*Frontend)(nil)

// Frontend is an implementation of
// Frontend for the gRPC protocol
type Frontend struct {
	mu         sync.Mutex
	grpcServer *grpc.Server
	logger     *zap.Logger
}

// Init initializes the frontend
func (frontend *Frontend) Init(options frontends.Options) error {
	if options.Server == nil {
		return fmt.Errorf("a server is required")
	}

	if options.Resolver == nil {
		return fmt.Errorf("an identity resolver is required")
	}

	frontend.logger = options.Logger

	if frontend.logger == nil {
		frontend.logger = zap.L()
	}

	serverOptions := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			auth.UnaryServerInterceptor(options.Resolver),
			accessLog(frontend.logger),
		),
	}

	if options.TLSConfig != nil {
		serverOptions = append(serverOptions, grpc.Creds(credentials.NewTLS(options.TLSConfig)))
	}

	frontend.mu.Lock()
	defer frontend.mu.Unlock()

	frontend.grpcServer = grpc.NewServer(serverOptions...)
	tallypb.RegisterPostsServer(frontend.grpcServer, options.Server)

	return nil
}

// Listen accepts connections from this listener
func (frontend *Frontend) Listen(listener net.Listener) error {
	frontend.mu.Lock()
	grpcServer := frontend.grpcServer
	frontend.mu.Unlock()

	if grpcServer == nil {
		return fmt.Errorf("frontend is not initialized")
	}

	frontend.logger.Info("grpc frontend listening", zap.String("address", listener.Addr().String()))

	if err := grpcServer.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}

	return nil
}

// Stop stops accepting connections from listeners and causes
// all calls to Listen to return
func (frontend *Frontend) Stop() error {
	frontend.mu.Lock()
	defer frontend.mu.Unlock()

	if frontend.grpcServer != nil {
		frontend.grpcServer.GracefulStop()
	}

	return nil
}

func accessLog(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("principal", auth.FromContext(ctx).String()),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)

		return resp, err
	}
}
