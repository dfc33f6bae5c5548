package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"user-registry-service/api"
	"user-registry-service/internal/adapter/gin/handler"
	"user-registry-service/internal/adapter/gin/middleware"
	grpcmiddleware "user-registry-service/internal/adapter/grpc/middleware"
)

// Tracing carries the OpenTelemetry providers the routers instrument with.
type Tracing struct {
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

func (t Tracing) middleware(service string) gin.HandlerFunc {
	opts := []otelgin.Option{}
	if t.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(t.TracerProvider))
	}
	if t.Propagator != nil {
		opts = append(opts, otelgin.WithPropagators(t.Propagator))
	}
	return otelgin.Middleware(service, opts...)
}

// SetupRouter configures the user registry router with all routes and middleware
func SetupRouter(
	serviceName string,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	tracing Tracing,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware; tracing runs before RequestID so logs carry the trace id
	router.Use(middleware.Recovery(log))
	router.Use(tracing.middleware(serviceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	router.GET("/health", healthHandler.Check)

	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.OpenAPI)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	users := router.Group("/users", middleware.RateLimiter(rateLimiter, log))
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
