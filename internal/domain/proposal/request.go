package proposal

import (
	"context"
	"errors"
	"strings"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/prompt"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

// Form defaults applied when a field is left blank.
const (
	DefaultIndustry = "General Business"
	DefaultGoal     = "Build trust before purchase"
	DefaultPriority = "Clear specifications"
	DefaultTone     = "safe"
)

// ErrInvalidRequest marks a request rejected before any quota or generation work.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request is an inbound generation request. Mode is kept raw so unknown values can be rejected.
type Request struct {
	Mode              string
	Input             string
	Role              string
	Industry          string
	Goal              string
	Priority          string
	Tone              string
	GoalNote          string
	PriorityNote      string
	ContextNote       string
	MakeClientFocused bool
}

// Normalize validates the request and applies form defaults.
func (r Request) Normalize(ctx context.Context) (prompt.Input, error) {
	input := strings.TrimSpace(r.Input)
	if input == "" {
		return prompt.Input{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "input is required", ErrInvalidRequest, "5d0e7b21-9c4a-4f3e-8a61-2b7c9d0e4f15")
	}
	role := strings.TrimSpace(r.Role)
	if role == "" {
		return prompt.Input{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "role is required", ErrInvalidRequest, "a4c8e2f0-1b3d-4a6c-9e7f-0d2b4c6e8a13")
	}
	mode, err := account.ParseMode(r.Mode)
	if err != nil {
		return prompt.Input{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown mode", errors.Join(ErrInvalidRequest, err), "e9b1d3f5-7a2c-4e8b-b0d4-6f8a1c3e5b27")
	}

	return prompt.Input{
		Mode:              mode,
		Context:           input,
		Role:              role,
		Industry:          orDefault(r.Industry, DefaultIndustry),
		Goal:              orDefault(r.Goal, DefaultGoal),
		Priority:          orDefault(r.Priority, DefaultPriority),
		Tone:              strings.ToLower(orDefault(r.Tone, DefaultTone)),
		GoalNote:          strings.TrimSpace(r.GoalNote),
		PriorityNote:      strings.TrimSpace(r.PriorityNote),
		ContextNote:       strings.TrimSpace(r.ContextNote),
		MakeClientFocused: r.MakeClientFocused,
	}, nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
