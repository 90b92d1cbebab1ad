package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"jan-server/services/proposal-api/docs/swagger"
	"jan-server/services/proposal-api/internal/config"
	"jan-server/services/proposal-api/internal/infrastructure"
	"jan-server/services/proposal-api/internal/infrastructure/database"
	middleware "jan-server/services/proposal-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/legacy"
	v1 "jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1"
)

const readinessTimeout = 2 * time.Second

type HttpServer struct {
	engine      *gin.Engine
	infra       *infrastructure.Infrastructure
	v1Route     *v1.V1Route
	legacyRoute *legacy.LegacyRoute
	config      *config.Config
}

func NewHttpServer(
	v1Route *v1.V1Route,
	legacyRoute *legacy.LegacyRoute,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &HttpServer{
		engine:      gin.New(),
		infra:       infra,
		v1Route:     v1Route,
		legacyRoute: legacyRoute,
		config:      cfg,
	}
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	server.registerPublicRoutes()
	server.registerProtectedRoutes()
	return server
}

func (s *HttpServer) registerPublicRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		checks := gin.H{"database": "ok", "auth": "ok"}
		ready := true
		if err := database.Ping(ctx, s.infra.DB); err != nil {
			s.infra.Logger.Warn().Err(err).Msg("readiness: database ping failed")
			checks["database"] = "unavailable"
			ready = false
		}
		if !s.infra.Verifier.Ready() {
			checks["auth"] = "unavailable"
			ready = false
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if s.config.EnableSwagger {
		swagger.SwaggerInfo.BasePath = "/"
		s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

func (s *HttpServer) registerProtectedRoutes() {
	protected := s.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(s.infra.Verifier, s.infra.Logger),
		middleware.RateLimitMiddleware(s.infra.Limiter, s.infra.Logger),
	)

	s.v1Route.RegisterRouter(protected)
	s.legacyRoute.RegisterRouter(protected)
}

// Handler exposes the engine, mainly for tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.infra.Logger.Info().Str("addr", s.config.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.infra.Logger.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.infra.Logger.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
