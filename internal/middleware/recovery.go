package middleware

import (
	"github.com/gin-gonic/gin"

	"feedesk/pkg/logger"
	"feedesk/pkg/response"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().WithFields(map[string]interface{}{
					"error": err,
					"path":  c.Request.URL.Path,
				}).Error("Panic recovered")
				response.InternalError(c, "Internal server error", "An unexpected error occurred")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// ErrorHandler logs errors attached with c.Error and answers for handlers
// that returned without writing a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		logger.GetLogger().WithError(err.Err).WithField("path", c.Request.URL.Path).Error("Request error")

		if !c.Writer.Written() {
			response.InternalError(c, "Request failed", err.Error())
		}
	}
}
