package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/proposal-api/internal/config"
	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/infrastructure/auth"
	"jan-server/services/proposal-api/internal/infrastructure/crontab"
	"jan-server/services/proposal-api/internal/infrastructure/database"
	"jan-server/services/proposal-api/internal/infrastructure/database/repository"
	"jan-server/services/proposal-api/internal/infrastructure/inference"
	"jan-server/services/proposal-api/internal/infrastructure/logger"
	"jan-server/services/proposal-api/internal/infrastructure/ratelimit"
	"jan-server/services/proposal-api/internal/infrastructure/sanitizer"
	"jan-server/services/proposal-api/internal/utils/httpclients"
)

const migrationTimeout = 2 * time.Minute

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideLogger rebuilds the process logger with the configured level and format.
func ProvideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = gormlogger.Info
	}
	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		ReadURL:     cfg.DatabaseRead,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()
		if err := database.Migrate(ctx, db, log); err != nil {
			return nil, fmt.Errorf("run database migrations: %w", err)
		}
	}

	return db, nil
}

// ProvideTokenVerifier selects the JWKS or shared-secret verifier.
func ProvideTokenVerifier(cfg *config.Config, log zerolog.Logger) (auth.TokenVerifier, error) {
	return auth.NewVerifier(context.Background(), cfg, log)
}

// ProvideInferenceClient provides the generation service client.
// The resty client carries no timeout; every call applies its own deadline instead.
func ProvideInferenceClient(cfg *config.Config, log zerolog.Logger) *inference.Client {
	return inference.NewClient(
		httpclients.NewClient("generation", 0),
		inference.Config{
			BaseURL: cfg.GenerationBaseURL,
			APIKey:  cfg.GenerationAPIKey,
			Model:   cfg.GenerationModel,
			Timeout: cfg.GenerationTimeout,
		},
		log,
	)
}

// ProvideSanitizer provides the PII sanitizer for log fields and span attributes.
func ProvideSanitizer(cfg *config.Config) *sanitizer.Sanitizer {
	return sanitizer.New(sanitizer.ParseLevel(cfg.PIILevel), cfg.PIISalt)
}

// ProvideRateLimiter provides the request limiter.
func ProvideRateLimiter(cfg *config.Config, log zerolog.Logger) (ratelimit.Limiter, error) {
	return ratelimit.New(context.Background(), ratelimit.Config{
		PerMinute: cfg.RateLimitPerMinute,
		RedisURL:  cfg.RedisURL,
	}, log)
}

// ProvideCrontab provides the pending proposal reconciliation job.
func ProvideCrontab(cfg *config.Config, proposals proposal.Repository, log zerolog.Logger) *crontab.Crontab {
	return crontab.NewCrontab(crontab.Config{
		Enabled:         cfg.ReconcileEnabled,
		IntervalMinutes: cfg.ReconcileIntervalMinutes,
		PendingAge:      cfg.ReconcilePendingAge,
	}, proposals, log)
}

// Infrastructure holds all infrastructure dependencies
type Infrastructure struct {
	DB       *gorm.DB
	Verifier auth.TokenVerifier
	Limiter  ratelimit.Limiter
	Logger   zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(
	db *gorm.DB,
	verifier auth.TokenVerifier,
	limiter ratelimit.Limiter,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:       db,
		Verifier: verifier,
		Limiter:  limiter,
		Logger:   logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Logger
	ProvideLogger,

	// Database
	ProvideDatabase,

	// Repositories
	repository.RepositoryProvider,

	// Generation client
	ProvideInferenceClient,
	wire.Bind(new(proposal.Generator), new(*inference.Client)),

	// Auth
	ProvideTokenVerifier,

	// Sanitizer and rate limiter
	ProvideSanitizer,
	ProvideRateLimiter,

	// Crontab for pending reconciliation
	ProvideCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
