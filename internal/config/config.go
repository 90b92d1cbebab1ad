package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Auth modes supported by the authenticator.
const (
	AuthModeJWKS   = "jwks"
	AuthModeSecret = "secret"
)

var globalConfig *Config

// Config holds all environment backed configuration for proposal-api.
type Config struct {
	// HTTP Server
	HTTPPort           int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// PostgreSQL
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DatabaseRead   string        `env:"DB_READ_DSN"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Auth
	AuthMode            string        `env:"AUTH_MODE" envDefault:"jwks"`
	JWKSURL             string        `env:"JWKS_URL"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	JWTSecret           string        `env:"AUTH_JWT_SECRET"`
	Issuer              string        `env:"ISSUER"`
	Audience            string        `env:"AUDIENCE"`
	AuthClockSkew       time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Generation service
	GenerationBaseURL string        `env:"GENERATION_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GenerationAPIKey  string        `env:"GENERATION_API_KEY"`
	GenerationModel   string        `env:"GENERATION_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"120s"`
	FinalizeTimeout   time.Duration `env:"FINALIZE_TIMEOUT" envDefault:"30s"`

	// Quota limits per mode
	FreelancerLimit int `env:"QUOTA_FREELANCER_LIMIT" envDefault:"3"`
	StudentLimit    int `env:"QUOTA_STUDENT_LIMIT" envDefault:"5"`

	// Rate limiting
	RateLimitPerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RedisURL           string  `env:"REDIS_URL"`

	// Pending artifact reconciliation
	ReconcileEnabled         bool          `env:"RECONCILE_ENABLED" envDefault:"true"`
	ReconcileIntervalMinutes int           `env:"RECONCILE_INTERVAL_MINUTES" envDefault:"10"`
	ReconcilePendingAge      time.Duration `env:"RECONCILE_PENDING_AGE" envDefault:"15m"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"proposal-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"jan"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
	PIILevel         string `env:"PII_LEVEL" envDefault:"hashed"`
	PIISalt          string `env:"PII_SALT"`

	// Features
	EnableSwagger bool `env:"ENABLE_SWAGGER" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.PIILevel = strings.ToLower(strings.TrimSpace(cfg.PIILevel))
	cfg.GenerationBaseURL = strings.TrimRight(strings.TrimSpace(cfg.GenerationBaseURL), "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthMode {
	case AuthModeJWKS:
		if c.JWKSURL == "" {
			return errors.New("JWKS_URL is required when AUTH_MODE=jwks")
		}
		if _, err := url.ParseRequestURI(c.JWKSURL); err != nil {
			return fmt.Errorf("invalid JWKS_URL: %w", err)
		}
	case AuthModeSecret:
		if strings.TrimSpace(c.JWTSecret) == "" {
			return errors.New("AUTH_JWT_SECRET is required when AUTH_MODE=secret")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	if _, err := url.ParseRequestURI(c.GenerationBaseURL); err != nil {
		return fmt.Errorf("invalid GENERATION_BASE_URL: %w", err)
	}
	if c.FreelancerLimit < 0 || c.StudentLimit < 0 {
		return errors.New("quota limits must not be negative")
	}
	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be positive")
	}
	if c.FinalizeTimeout <= 0 {
		return errors.New("FINALIZE_TIMEOUT must be positive")
	}
	switch c.PIILevel {
	case "none", "hashed", "full":
	default:
		return fmt.Errorf("unsupported PII_LEVEL %q", c.PIILevel)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Limits returns the free-tier generation limit keyed by mode name.
func (c *Config) Limits() map[string]int {
	return map[string]int{
		"freelancer": c.FreelancerLimit,
		"student":    c.StudentLimit,
	}
}

// GetGlobal returns the most recently loaded config.
// Deprecated: inject *Config instead.
func GetGlobal() *Config {
	return globalConfig
}
