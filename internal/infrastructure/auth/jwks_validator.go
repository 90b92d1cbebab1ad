package auth

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// JWKSValidator validates RS256 and ES256 tokens against a remote key set that
// keyfunc refreshes in the background.
type JWKSValidator struct {
	policy         claimsPolicy
	jwksURL        string
	logger         zerolog.Logger
	refreshEvery   time.Duration
	jwks           atomic.Pointer[keyfunc.JWKS]
	// refreshFailing is set by the last background refresh and feeds readiness.
	refreshFailing atomic.Bool
}

// backoff for the initial key set fetch
var (
	jwksRetryStart = time.Second
	jwksRetryCap   = 10 * time.Second
	jwksRetryLimit = 2 * time.Minute
)

var _ TokenVerifier = (*JWKSValidator)(nil)

// NewJWKSValidator blocks until the key set has been fetched once, retrying
// with exponential backoff until ctx ends or jwksRetryLimit passes.
func NewJWKSValidator(
	ctx context.Context,
	jwksURL,
	issuer,
	audience string,
	refreshEvery,
	clockSkew time.Duration,
	logger zerolog.Logger,
) (*JWKSValidator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}

	validator := &JWKSValidator{
		policy:       claimsPolicy{issuer: issuer, audience: audience, clockSkew: clockSkew},
		jwksURL:      jwksURL,
		logger:       logger.With().Str("component", "jwks-validator").Logger(),
		refreshEvery: refreshEvery,
	}
	jwks, err := validator.fetch(ctx)
	if err != nil {
		return nil, err
	}
	validator.jwks.Store(jwks)
	return validator, nil
}

func (v *JWKSValidator) options(ctx context.Context) keyfunc.Options {
	return keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   v.refreshEvery,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.refreshFailing.Store(err != nil)
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
	}
}

func (v *JWKSValidator) fetch(ctx context.Context) (*keyfunc.JWKS, error) {
	deadline := time.Now().Add(jwksRetryLimit)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	wait := jwksRetryStart
	for attempt := 1; ; attempt++ {
		jwks, err := keyfunc.Get(v.jwksURL, v.options(ctx))
		if err == nil {
			return jwks, nil
		}
		if time.Now().Add(wait).After(deadline) {
			return nil, fmt.Errorf("fetch jwks after %d attempts: %w", attempt, err)
		}
		v.logger.Warn().Err(err).Str("jwks_url", v.jwksURL).Int("attempt", attempt).Dur("retry_in", wait).
			Msg("jwks fetch failed")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("fetch jwks: %w", ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, jwksRetryCap)
	}
}

// Verify parses and validates rawToken.
func (v *JWKSValidator) Verify(_ context.Context, rawToken string) (*Claims, error) {
	jwks := v.jwks.Load()
	if jwks == nil {
		return nil, errors.New("jwks not initialised")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithLeeway(v.policy.clockSkew),
	)
	token, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return v.policy.extract(mapClaims)
}

// Ready reports whether keys are loaded and the last refresh succeeded.
func (v *JWKSValidator) Ready() bool {
	return v.jwks.Load() != nil && !v.refreshFailing.Load()
}

// Mode names the verifier for metrics.
func (v *JWKSValidator) Mode() string {
	return "jwks"
}
