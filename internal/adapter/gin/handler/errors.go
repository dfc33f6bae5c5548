package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "user-registry-service/pkg/errors"
	"user-registry-service/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// handleError converts usecase errors to HTTP responses
func handleError(c *gin.Context, log *zap.Logger, err error) {
	l := logger.WithContext(c.Request.Context(), log)

	var (
		nf *pkgerrors.NotFoundError
		ve *pkgerrors.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		l.Warn("resource not found", zap.String("resource", nf.Resource))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Detail: nf.Error()})
	case errors.As(err, &ve):
		l.Warn("validation failed", zap.String("field", ve.Field), zap.String("detail", ve.Message))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Detail: ve.Message})
	default:
		l.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Detail: "Internal server error"})
	}
}

// badRequest answers request-shape errors (unparseable body or path) with 422.
func badRequest(c *gin.Context, log *zap.Logger, detail string, err error) {
	logger.WithContext(c.Request.Context(), log).Warn("invalid request", zap.String("detail", detail), zap.Error(err))
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Detail: detail})
}

// pathID parses the :id path parameter, answering 422 when it is not an integer.
func pathID(c *gin.Context, log *zap.Logger) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		badRequest(c, log, "id must be an integer", err)
		return 0, false
	}
	return id, true
}
