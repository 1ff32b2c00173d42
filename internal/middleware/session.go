package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"feedesk/internal/events"
	"feedesk/internal/session"
	"feedesk/pkg/logger"
	"feedesk/pkg/response"
)

// Session attaches the caller's bearer token to the request context so the
// platform client forwards it. Requests without a token fall through and the
// client uses the service token instead. Tokens whose exp claim has passed
// are rejected before any platform call.
func Session(bus events.Bus) gin.HandlerFunc {
	return SessionAt(bus, time.Now)
}

func SessionAt(bus events.Bus, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		s, ok := session.FromAuthorization(header)
		if !ok {
			response.Unauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		if s.Expired(now()) {
			logger.GetLogger().WithField("subject", s.Subject()).Warn("Rejected expired session")
			if bus != nil {
				bus.Publish(c.Request.Context(), events.Event{
					Topic:   events.TopicSessionExpired,
					Payload: events.SessionExpired{Subject: s.Subject(), Reason: "token expired"},
				})
			}
			response.Unauthorized(c, "session expired, please sign in again")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		c.Next()
	}
}
