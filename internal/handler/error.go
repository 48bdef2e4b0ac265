package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/pkg/logger"
	"github.com/eventops/qr-checkin-api/pkg/response"
)

// handleError maps service errors to the API error envelope. Anything
// without a mapping is logged server-side and returned as an opaque 500.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsDecodeError(err):
		response.BadRequest(c, "could not decode qr payload")
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsForbiddenError(err):
		response.Forbidden(c, err.Error())
	default:
		logger.Get().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}
