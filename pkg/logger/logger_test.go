package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "user-registry-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
	})
	require.NoError(t, err)

	l.Info("hello")
	assert.FileExists(t, path)
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := ContextWithTraceID(ContextWithRequestID(context.Background(), "req-1"), "trace-1")
	WithContext(ctx, base).Info("with ids")
	WithContext(context.Background(), base).Info("without ids")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "trace-1", entries[0].ContextMap()["trace_id"])
	assert.Empty(t, entries[1].ContextMap())
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/userregistry.v1.UserRegistry/GetUser"}

	capture := func(ctx context.Context, _ any) (any, error) {
		return GetRequestID(ctx), nil
	}

	t.Run("generates when absent", func(t *testing.T) {
		got, err := interceptor(context.Background(), nil, info, capture)
		require.NoError(t, err)
		assert.Len(t, got, 36)
	})

	t.Run("reuses incoming metadata", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc-123"))
		got, err := interceptor(ctx, nil, info, capture)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", got)
	})
}
