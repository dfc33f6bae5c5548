package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"

	"user-registry-service/internal/adapter/gin/handler"
	"user-registry-service/internal/adapter/registryclient"
	"user-registry-service/internal/adapter/repository/memory"
	"user-registry-service/internal/usecase/task"
)

type gatewayFixture struct {
	router      *gin.Engine
	spans       *tracetest.SpanRecorder
	metrics     *sdkmetric.ManualReader
	mu          sync.Mutex
	traceparent []string
}

func (f *gatewayFixture) upstreamTraceparents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.traceparent...)
}

func newGateway(t *testing.T) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	f := &gatewayFixture{
		spans:   tracetest.NewSpanRecorder(),
		metrics: sdkmetric.NewManualReader(),
	}

	registry := newRegistryRouter(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.traceparent = append(f.traceparent, r.Header.Get("Traceparent"))
		f.mu.Unlock()
		registry.ServeHTTP(w, r)
	}))
	t.Cleanup(upstream.Close)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	prop := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	client := registryclient.New(upstream.URL, 2*time.Second, log,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)

	router, err := SetupGatewayRouter(GatewayDeps{
		ServiceName:   "gateway-service",
		Users:         handler.NewGatewayUserHandler(client, log),
		Tasks:         handler.NewTaskHandler(task.New(memory.NewTaskStore(), log), log),
		Health:        handler.NewHealthHandler("gateway-service"),
		CORS:          CORSConfig{AllowOrigins: []string{"*"}, ExposeHeaders: []string{"X-Request-ID"}},
		Tracing:       Tracing{TracerProvider: tp, Propagator: prop},
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.metrics)),
		Log:           log,
	})
	require.NoError(t, err)
	f.router = router
	return f
}

func TestGateway_ProxyPropagatesTraceContext(t *testing.T) {
	f := newGateway(t)

	w, body := call(t, f.router, http.MethodGet, "/users/1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "John Doe", body["name"])

	parents := f.upstreamTraceparents()
	require.Len(t, parents, 1)
	require.NotEmpty(t, parents[0])

	var server sdktrace.ReadOnlySpan
	for _, s := range f.spans.Ended() {
		if s.SpanKind() == trace.SpanKindServer {
			server = s
		}
	}
	require.NotNil(t, server)
	assert.Contains(t, parents[0], server.SpanContext().TraceID().String())
}

func TestGateway_ProxyPassesThroughErrors(t *testing.T) {
	f := newGateway(t)

	w, body := call(t, f.router, http.MethodDelete, "/users/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["detail"])

	w, body = call(t, f.router, http.MethodPost, "/users", `{"name":"Test User","email":"invalid-email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", body["error"])

	w, body = call(t, f.router, http.MethodPost, "/users", `{"name":"Test User","email":"test@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(3), body["id"])
}

func TestGateway_RootAndTasks(t *testing.T) {
	f := newGateway(t)

	w, body := call(t, f.router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello from gateway-service", body["message"])

	w, body = call(t, f.router, http.MethodPost, "/tasks", `{"title":"Review"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), body["id"])

	w, _ = call(t, f.router, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGateway_CORSPreflight(t *testing.T) {
	f := newGateway(t)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGateway_CORSExposesHeaders(t *testing.T) {
	f := newGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
}

func TestGateway_CountsRequestsByOutcome(t *testing.T) {
	f := newGateway(t)

	call(t, f.router, http.MethodGet, "/health", "")
	call(t, f.router, http.MethodGet, "/tasks/42", "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.metrics.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["http_requests_total"])
	assert.Equal(t, int64(1), totals["http_requests_success"])
	assert.Equal(t, int64(1), totals["http_requests_fail"])
}
