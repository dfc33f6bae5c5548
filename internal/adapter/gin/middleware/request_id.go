package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"user-registry-service/pkg/logger"
)

// RequestID reuses an incoming X-Request-ID or generates one, echoes it on the
// response and stores it, with the active trace id, in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logger.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(logger.RequestIDHeader, id)

		ctx := logger.ContextWithRequestID(c.Request.Context(), id)
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			ctx = logger.ContextWithTraceID(ctx, sc.TraceID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
