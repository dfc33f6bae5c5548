package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Service   string `json:"service"`
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	service string
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler reporting the given service name
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, now: time.Now}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().Unix(),
		Service:   h.service,
	})
}
