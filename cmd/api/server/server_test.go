package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-registry-service/internal/adapter/grpc/middleware"
	"user-registry-service/internal/adapter/repository/memory"
	domain "user-registry-service/internal/domain/user"
	"user-registry-service/internal/usecase/user"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestServer_StartAndShutdown(t *testing.T) {
	log := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserRegistry(domain.DefaultSeed(), log), log)

	httpAddr := freeAddr(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	s := &Server{
		Logger:   log,
		HTTP:     SetupGinServer(mux, httpAddr, log),
		GRPC:     SetupGRPC(uc, log, middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log)),
		GRPCAddr: freeAddr(t),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + httpAddr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenError(t *testing.T) {
	log := zaptest.NewLogger(t)
	s := &Server{
		Logger: log,
		HTTP:   SetupGinServer(http.NewServeMux(), "256.0.0.1:bad", log),
	}

	assert.Error(t, s.Start(context.Background()))
}

func startWithTimeout(t *testing.T, s *Server) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	select {
	case err := <-errCh:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after a listener failed")
		return nil
	}
}

func TestServer_HTTPListenErrorStopsGRPC(t *testing.T) {
	log := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserRegistry(domain.DefaultSeed(), log), log)
	grpcAddr := freeAddr(t)

	s := &Server{
		Logger:   log,
		HTTP:     SetupGinServer(http.NewServeMux(), "256.0.0.1:bad", log),
		GRPC:     SetupGRPC(uc, log, middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log)),
		GRPCAddr: grpcAddr,
	}

	err := startWithTimeout(t, s)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server")
	assert.Eventually(t, func() bool {
		conn, dialErr := net.Dial("tcp", grpcAddr)
		if dialErr != nil {
			return true
		}
		_ = conn.Close()
		return false
	}, time.Second, 20*time.Millisecond)
}

func TestServer_GRPCListenErrorStopsHTTP(t *testing.T) {
	log := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserRegistry(domain.DefaultSeed(), log), log)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	s := &Server{
		Logger:   log,
		HTTP:     SetupGinServer(http.NewServeMux(), freeAddr(t), log),
		GRPC:     SetupGRPC(uc, log, middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log)),
		GRPCAddr: busy.Addr().String(),
	}

	err = startWithTimeout(t, s)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
