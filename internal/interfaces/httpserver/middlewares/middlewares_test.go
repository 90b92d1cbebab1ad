package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/proposal-api/internal/infrastructure/auth"
	"jan-server/services/proposal-api/internal/infrastructure/ratelimit"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type stubVerifier struct {
	claims *auth.Claims
	err    error
	raw    string
}

func (s *stubVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	s.raw = raw
	return s.claims, s.err
}

func (s *stubVerifier) Ready() bool { return true }

func (s *stubVerifier) Mode() string { return "stub" }

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	engine.GET("/probe", func(c *gin.Context) {
		principal, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"subject": principal.Subject, "request_id": RequestIDFromContext(c)})
	})
	return engine
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def", token: "abc.def", ok: true},
		{header: "bearer   abc", token: "abc", ok: true},
		{header: "Basic abc"},
		{header: "Bearer "},
		{header: "abc"},
		{header: ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, err := bearerToken(tt.header)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid token attaches principal", func(t *testing.T) {
		verifier := &stubVerifier{claims: &auth.Claims{Subject: "user-1", Email: "u@example.com"}}
		engine := newEngine(AuthMiddleware(verifier, zerolog.Nop()))

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"subject":"user-1"`)
		assert.Equal(t, "token-1", verifier.raw)
		assert.Equal(t, "user-1", rec.Header().Get("X-User-ID"))
	})

	t.Run("rejected token", func(t *testing.T) {
		verifier := &stubVerifier{err: errors.New("expired")}
		engine := newEngine(AuthMiddleware(verifier, zerolog.Nop()))

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"Unauthorized"`)
	})

	t.Run("missing header never reaches the verifier", func(t *testing.T) {
		verifier := &stubVerifier{claims: &auth.Claims{Subject: "user-1"}}
		engine := newEngine(AuthMiddleware(verifier, zerolog.Nop()))

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, verifier.raw)
	})
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	var fromCtx string
	engine.GET("/probe", func(c *gin.Context) {
		fromCtx, _ = c.Request.Context().Value(platformerrors.RequestIDKey{}).(string)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-42", fromCtx)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, rec.Header().Get("X-Request-Id"), fromCtx)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return true, errors.New("redis down")
}

func (failingLimiter) Backend() string { return "redis" }

func TestRateLimitMiddleware(t *testing.T) {
	engine := newEngine(RateLimitMiddleware(ratelimit.NewTokenBucket(1), zerolog.Nop()))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	open := newEngine(RateLimitMiddleware(failingLimiter{}, zerolog.Nop()))
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "limiter errors let the request through")
}

func TestCORSMiddleware(t *testing.T) {
	engine := newEngine(CORSMiddleware([]string{"https://app.example.com"}))

	req := httptest.NewRequest(http.MethodOptions, "/probe", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
