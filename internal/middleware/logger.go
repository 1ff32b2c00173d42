package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"feedesk/internal/session"
	"feedesk/pkg/logger"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		fields := map[string]interface{}{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"latency":    time.Since(startTime).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if s, ok := session.FromContext(c.Request.Context()); ok && s.Subject() != "" {
			fields["subject"] = s.Subject()
		}

		entry := logger.GetLogger().WithFields(fields)
		if c.Writer.Status() >= 500 {
			entry.Warn("Request processed")
			return
		}
		entry.Info("Request processed")
	}
}
