package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-registry-service/internal/adapter/registryclient"
	"user-registry-service/pkg/logger"
)

// RegistryClient is the outbound registry API used by the gateway.
type RegistryClient interface {
	ListUsers(ctx context.Context) (*registryclient.UserList, error)
	GetUser(ctx context.Context, id int64) (*registryclient.User, error)
	CreateUser(ctx context.Context, in registryclient.CreateUserInput) (*registryclient.User, error)
	UpdateUser(ctx context.Context, id int64, in registryclient.UpdateUserInput) (*registryclient.User, error)
	DeleteUser(ctx context.Context, id int64) (string, error)
}

// GatewayUserHandler forwards /users requests to the registry, passing its
// status and error detail through unchanged.
type GatewayUserHandler struct {
	client RegistryClient
	log    *zap.Logger
}

func NewGatewayUserHandler(client RegistryClient, log *zap.Logger) *GatewayUserHandler {
	return &GatewayUserHandler{client: client, log: log}
}

func (h *GatewayUserHandler) upstreamError(c *gin.Context, err error) {
	if apiErr, ok := registryclient.IsAPIError(err); ok {
		code := apiErr.Code
		if code == "" {
			code = "upstream_error"
		}
		c.JSON(apiErr.StatusCode, ErrorResponse{Error: code, Detail: apiErr.Detail})
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Error("user registry unreachable", zap.Error(err))
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: "bad_gateway", Detail: "User registry unavailable"})
}

func (h *GatewayUserHandler) ListUsers(c *gin.Context) {
	list, err := h.client.ListUsers(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *GatewayUserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	u, err := h.client.GetUser(c.Request.Context(), id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *GatewayUserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "request body must be a JSON object with name and email", err)
		return
	}
	u, err := h.client.CreateUser(c.Request.Context(), registryclient.CreateUserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *GatewayUserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "request body must be a JSON object", err)
		return
	}
	u, err := h.client.UpdateUser(c.Request.Context(), id, registryclient.UpdateUserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *GatewayUserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	msg, err := h.client.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}
