package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of JWT claims the service reads.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	Email     string
	Name      string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	TokenID   string
}

// Errors surfaced on rejection. Callers answer every one of them with 401.
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrIssuerMismatch = errors.New("issuer mismatch")
	ErrAudience       = errors.New("audience mismatch")
	ErrMissingSubject = errors.New("sub claim missing")
)

// claimsPolicy holds the expectations shared by every verifier.
type claimsPolicy struct {
	issuer    string
	audience  string
	clockSkew time.Duration
}

func (p claimsPolicy) extract(mapClaims jwt.MapClaims) (*Claims, error) {
	iss := claimString(mapClaims["iss"])
	if p.issuer != "" && iss != p.issuer {
		return nil, fmt.Errorf("%w: %s", ErrIssuerMismatch, iss)
	}

	audiences, err := claimStrings(mapClaims["aud"])
	if err != nil {
		return nil, err
	}
	if p.audience != "" && !contains(audiences, p.audience) {
		return nil, ErrAudience
	}

	sub := claimString(mapClaims["sub"])
	if sub == "" {
		return nil, ErrMissingSubject
	}

	expires := jwtNumericTime(mapClaims["exp"])
	notBefore := jwtNumericTime(mapClaims["nbf"])
	now := time.Now().UTC()
	if !expires.IsZero() && now.After(expires.Add(p.clockSkew)) {
		return nil, errors.New("token expired")
	}
	if !notBefore.IsZero() && now.Add(p.clockSkew).Before(notBefore) {
		return nil, errors.New("token not yet valid")
	}

	var roles []string
	if realmAccess, ok := mapClaims["realm_access"].(map[string]any); ok {
		roles, _ = claimStrings(realmAccess["roles"])
	}
	// hosted providers put a single role string on the token
	if role := claimString(mapClaims["role"]); role != "" {
		roles = append(roles, role)
	}

	return &Claims{
		Subject:   sub,
		Issuer:    iss,
		Audience:  audiences,
		Email:     claimString(mapClaims["email"]),
		Name:      claimString(mapClaims["name"]),
		Roles:     roles,
		ExpiresAt: expires,
		IssuedAt:  jwtNumericTime(mapClaims["iat"]),
		TokenID:   claimString(mapClaims["jti"]),
	}, nil
}

func jwtNumericTime(value any) time.Time {
	switch timeValue := value.(type) {
	case float64:
		return time.Unix(int64(timeValue), 0).UTC()
	case int64:
		return time.Unix(timeValue, 0).UTC()
	case json.Number:
		if unixTime, err := timeValue.Int64(); err == nil {
			return time.Unix(unixTime, 0).UTC()
		}
	}
	return time.Time{}
}

func claimString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

func claimStrings(value any) ([]string, error) {
	switch val := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("claim unsupported type %T", val)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
