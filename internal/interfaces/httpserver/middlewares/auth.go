package middlewares

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/domain"
	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/infrastructure/auth"
	"jan-server/services/proposal-api/internal/infrastructure/metrics"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

const principalContextKey = "principal"

var errMissingBearer = errors.New("missing bearer token")

// AuthMiddleware verifies the bearer token and attaches the caller's principal.
// Every failure answers 401 with the same message.
func AuthMiddleware(verifier auth.TokenVerifier, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *auth.Claims
			claims, err = verifier.Verify(c.Request.Context(), raw)
			if err == nil {
				metrics.RecordAuth(verifier.Mode(), "success")
				setPrincipal(c, principalFromClaims(claims))
				c.Next()
				return
			}
		}

		metrics.RecordAuth(verifier.Mode(), "rejected")
		logger.Warn().
			Err(err).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Msg("unauthenticated request")
		platformerrors.WriteUnauthorized(c, "Unauthorized")
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

func principalFromClaims(claims *auth.Claims) domain.Principal {
	return domain.Principal{
		ID:      claims.Subject,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Email:   claims.Email,
		Name:    claims.Name,
		Roles:   claims.Roles,
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

// IdentityFromContext maps the principal to the identity the account resolver keys on.
func IdentityFromContext(c *gin.Context) account.Identity {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return account.Identity{}
	}
	return account.Identity{Subject: principal.Subject, Email: principal.Email}
}

// SetPrincipal stores principal on the gin context.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	setPrincipal(c, principal)
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	// expose commonly-used identity values for downstream handlers
	c.Set("user_id", principal.ID)
	c.Set("user_email", principal.Email)
	if principal.ID != "" {
		c.Writer.Header().Set("X-User-ID", principal.ID)
	}
}
