package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server holds the listeners of one process. GRPC is nil when disabled.
type Server struct {
	Logger   *zap.Logger
	HTTP     *http.Server
	GRPC     *grpc.Server
	GRPCAddr string
}

// Start serves HTTP and, when configured, gRPC until one of them fails or
// Shutdown is called. A graceful stop returns nil. When one listener fails
// the other is stopped so Start never returns with half the process serving.
// Cancelling ctx does not stop the servers; callers use Shutdown.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))

	var once sync.Once
	fail := func(err error) error {
		once.Do(s.stopAll)
		return err
	}

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fail(fmt.Errorf("HTTP server: %w", err))
		}
		return nil
	})

	if s.GRPC != nil {
		g.Go(func() error {
			lc := net.ListenConfig{}
			lis, err := lc.Listen(gctx, "tcp", s.GRPCAddr)
			if err != nil {
				return fail(fmt.Errorf("failed to listen: %w", err))
			}
			s.Logger.Info("gRPC server running", zap.String("address", s.GRPCAddr))
			if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fail(fmt.Errorf("gRPC server: %w", err))
			}
			return nil
		})
	}

	return g.Wait()
}

// stopAll closes every listener without draining in-flight requests.
func (s *Server) stopAll() {
	s.Logger.Warn("a server failed, stopping the others")
	if s.GRPC != nil {
		s.GRPC.Stop()
	}
	if err := s.HTTP.Close(); err != nil {
		s.Logger.Error("failed to close HTTP server", zap.Error(err))
	}
}

// Shutdown stops accepting requests and waits for in-flight ones within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.HTTP != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.HTTP.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		done := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}
