package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_RunStopsOnCancel(t *testing.T) {
	t.Setenv("GATEWAY_HTTP_PORT", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "2")

	ctx, cancel := context.WithCancel(context.Background())
	g, err := newGateway(ctx, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "gateway-service", g.cfg.Gateway.ServiceName)

	done := make(chan error, 1)
	go func() { done <- g.run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("gateway did not stop")
	}
}

func TestGateway_InvalidConfig(t *testing.T) {
	t.Setenv("GATEWAY_REQUEST_TIMEOUT_SECONDS", "-1")

	_, err := newGateway(context.Background(), t.TempDir())

	assert.ErrorContains(t, err, "GATEWAY_REQUEST_TIMEOUT_SECONDS must be positive")
}

func TestRootCmd_HasServe(t *testing.T) {
	cmd := newRootCmd()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}
