package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/config"
)

// TokenVerifier exchanges a bearer token for verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
	Ready() bool
	Mode() string
}

// NewVerifier builds the verifier selected by AUTH_MODE.
func NewVerifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWKS:
		validator, err := NewJWKSValidator(ctx, cfg.JWKSURL, cfg.Issuer, cfg.Audience, cfg.RefreshJWKSInterval, cfg.AuthClockSkew, log)
		if err != nil {
			return nil, err
		}
		return validator, nil
	case config.AuthModeSecret:
		validator, err := NewSecretValidator(cfg.JWTSecret, cfg.Issuer, cfg.Audience, cfg.AuthClockSkew)
		if err != nil {
			return nil, err
		}
		return validator, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
}
