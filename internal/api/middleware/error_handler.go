package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"media-transcriber/internal/api/errors"
)

// ErrorHandler recovers from panics and answers with a generic APIError.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		logger.Error("Recovered from panic",
			zap.Any("recovered", recovered),
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))

		apiErr := errors.NewInternalError("Internal server error")
		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as an APIError response. Errors that are not
// APIErrors are mapped with errors.FromError and attached to the context so
// the request log carries the cause.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := errors.FromError(err)
	if apiErr.Kind == errors.KindInternal {
		_ = c.Error(err)
	}
	resp := *apiErr
	resp.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(resp.HTTPStatus(), &resp)
}
