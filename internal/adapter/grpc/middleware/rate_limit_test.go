package middleware

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func mockHandler(ctx context.Context, req any) (any, error) {
	return "success", nil
}

func newTestLimiter(t *testing.T, client redis.Scripter, rate float64, burst int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: rate,
		BurstCapacity:     burst,
		Enabled:           true,
	}, zaptest.NewLogger(t))

	clock := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func peerContext() context.Context {
	return peerContextOn("127.0.0.1:12345")
}

func peerContextOn(hostport string) context.Context {
	addr, _ := net.ResolveTCPAddr("tcp", hostport)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: addr})
}

var getUserInfo = &grpc.UnaryServerInfo{FullMethod: "/userregistry.v1.UserRegistry/GetUser"}

func TestRateLimiter_AllowBurstThenDeny(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiter_Refill(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, clock := newTestLimiter(t, client, 2, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _ := rl.Allow(ctx, "k")
		require.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "k")
	require.False(t, ok)

	*clock = clock.Add(500 * time.Millisecond)
	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 1)
	ctx := context.Background()

	ok, _ := rl.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "b")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "a")
	assert.False(t, ok)
}

func TestRateLimiter_SetsExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 10, 20)

	_, err := rl.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, mr.TTL("k"))
}

func TestUnaryInterceptor_ExceedLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 2)
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext()

	for i := 0; i < 2; i++ {
		resp, err := interceptor(ctx, nil, getUserInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}

	resp, err := interceptor(ctx, nil, getUserInfo, mockHandler)
	assert.Nil(t, resp)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestUnaryInterceptor_ForwardedClientsAreSeparate(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 1)
	interceptor := rl.UnaryInterceptor()

	ctxA := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "10.0.0.1"))
	ctxB := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-real-ip", "10.0.0.2"))

	_, err := interceptor(ctxA, nil, getUserInfo, mockHandler)
	require.NoError(t, err)
	_, err = interceptor(ctxB, nil, getUserInfo, mockHandler)
	require.NoError(t, err)
	_, err = interceptor(ctxA, nil, getUserInfo, mockHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestUnaryInterceptor_ReconnectSharesBucket(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 1)
	interceptor := rl.UnaryInterceptor()

	_, err := interceptor(peerContextOn("127.0.0.1:40001"), nil, getUserInfo, mockHandler)
	require.NoError(t, err)

	_, err = interceptor(peerContextOn("127.0.0.1:40002"), nil, getUserInfo, mockHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestClientIPFromContext(t *testing.T) {
	assert.Equal(t, "127.0.0.1", clientIPFromContext(peerContextOn("127.0.0.1:5555")))
	assert.Equal(t, "::1", clientIPFromContext(peerContextOn("[::1]:5555")))
	assert.Equal(t, "unknown", clientIPFromContext(context.Background()))
}

func TestUnaryInterceptor_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()

	for i := 0; i < 5; i++ {
		_, err := interceptor(peerContext(), nil, getUserInfo, mockHandler)
		require.NoError(t, err)
	}
}

func TestUnaryInterceptor_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl, _ := newTestLimiter(t, client, 1, 1)
	interceptor := rl.UnaryInterceptor()
	mr.Close()

	resp, err := interceptor(peerContext(), nil, getUserInfo, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}
