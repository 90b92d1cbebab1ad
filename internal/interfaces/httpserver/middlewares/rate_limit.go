package middlewares

import (
	"net"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/infrastructure/metrics"
	"jan-server/services/proposal-api/internal/infrastructure/ratelimit"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

// RateLimitMiddleware rejects callers that exhausted their request budget.
// Limiter errors are logged and the request goes through.
func RateLimitMiddleware(limiter ratelimit.Limiter, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateKey(c)
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn().Err(err).Str("backend", limiter.Backend()).Msg("rate limiter unavailable")
		}
		if !allowed {
			metrics.RecordRateLimited(limiter.Backend())
			c.Header("Retry-After", "60")
			platformerrors.WriteRateLimited(c, "Too many requests")
			return
		}
		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	if principal, ok := PrincipalFromContext(c); ok && principal.ID != "" {
		return "pid:" + principal.ID
	}
	ip := clientIP(c.ClientIP())
	if ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
