package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/infrastructure/observability"
)

// LoggingMiddleware writes one access line per request. Bodies and query
// strings are never logged since both can carry client text.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		if traceID, spanID, ok := observability.SpanIDs(c.Request.Context()); ok {
			event = event.Str("trace_id", traceID).Str("span_id", spanID)
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			event = event.Str("request_id", requestID)
		}
		if userID := c.GetString("user_id"); userID != "" {
			event = event.Str("user_id", userID)
		}
		if proposalID := c.Writer.Header().Get("X-Proposal-Id"); proposalID != "" {
			event = event.Str("proposal_id", proposalID)
		}

		event.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Bool("stream", c.GetBool("stream")).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
	}
}
