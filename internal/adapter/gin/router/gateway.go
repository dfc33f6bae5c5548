package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"user-registry-service/internal/adapter/gin/handler"
	"user-registry-service/internal/adapter/gin/middleware"
	"user-registry-service/pkg/logger"
)

// CORSConfig lists the cross-origin settings of the gateway.
type CORSConfig struct {
	AllowOrigins  []string
	ExposeHeaders []string
}

func (c CORSConfig) handler() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader, "Traceparent", "Tracestate"},
		ExposeHeaders: c.ExposeHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 || slices.Contains(c.AllowOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = c.AllowOrigins
	}
	return cors.New(cfg)
}

// GatewayDeps are the collaborators of the gateway router.
type GatewayDeps struct {
	ServiceName   string
	Users         *handler.GatewayUserHandler
	Tasks         *handler.TaskHandler
	Health        *handler.HealthHandler
	CORS          CORSConfig
	Tracing       Tracing
	MeterProvider metric.MeterProvider
	Log           *zap.Logger
}

// SetupGatewayRouter configures the gateway: CORS, tracing and request
// metrics around the proxied /users routes and the local /tasks resource.
func SetupGatewayRouter(d GatewayDeps) (*gin.Engine, error) {
	telemetry, err := middleware.Telemetry(d.MeterProvider)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(d.Log),
		d.Tracing.middleware(d.ServiceName),
		middleware.RequestID(),
		middleware.Logger(d.Log),
		d.CORS.handler(),
		telemetry,
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.MessageResponse{Message: "Hello from " + d.ServiceName})
	})
	router.GET("/health", d.Health.Check)

	users := router.Group("/users")
	{
		users.GET("", d.Users.ListUsers)
		users.POST("", d.Users.CreateUser)
		users.GET("/:id", d.Users.GetUser)
		users.PUT("/:id", d.Users.UpdateUser)
		users.DELETE("/:id", d.Users.DeleteUser)
	}

	tasks := router.Group("/tasks")
	{
		tasks.GET("", d.Tasks.ListTasks)
		tasks.POST("", d.Tasks.CreateTask)
		tasks.GET("/:id", d.Tasks.GetTask)
		tasks.PUT("/:id", d.Tasks.UpdateTask)
		tasks.DELETE("/:id", d.Tasks.DeleteTask)
	}

	return router, nil
}
