package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Limiter decides whether the caller identified by key may issue another request.
// Implementations that depend on a remote store return true together with the
// store error, so an outage never blocks traffic.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Backend() string
}

type Config struct {
	PerMinute float64
	RedisURL  string
}

// New returns the Redis limiter when a URL is configured, otherwise the in-process
// token bucket. A zero rate yields a limiter that admits everything.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (Limiter, error) {
	if cfg.PerMinute <= 0 {
		return Unlimited{}, nil
	}
	if cfg.RedisURL == "" {
		return NewTokenBucket(cfg.PerMinute), nil
	}

	client, err := NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Rate limiter backed by Redis")
	return NewRedisLimiter(client, int64(cfg.PerMinute), time.Minute, log), nil
}

// Unlimited admits every request.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

func (Unlimited) Backend() string { return "none" }
