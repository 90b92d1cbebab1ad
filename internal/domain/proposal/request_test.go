package proposal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	in, err := Request{Input: "  Bakery chain  ", Role: "Designer"}.Normalize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, account.ModeFreelancer, in.Mode)
	assert.Equal(t, "Bakery chain", in.Context)
	assert.Equal(t, DefaultIndustry, in.Industry)
	assert.Equal(t, DefaultGoal, in.Goal)
	assert.Equal(t, DefaultPriority, in.Priority)
	assert.Equal(t, DefaultTone, in.Tone)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing input", Request{Role: "Designer"}},
		{"blank input", Request{Input: "   ", Role: "Designer"}},
		{"missing role", Request{Input: "ctx"}},
		{"unknown mode", Request{Input: "ctx", Role: "Designer", Mode: "agency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Normalize(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
		})
	}
}

func TestNormalizeUnknownModeWrapsSentinel(t *testing.T) {
	_, err := Request{Input: "ctx", Role: "r", Mode: "agency"}.Normalize(context.Background())
	assert.True(t, errors.Is(err, account.ErrUnknownMode))
}

func TestNormalizeKeepsExplicitFields(t *testing.T) {
	in, err := Request{
		Mode:              "Student",
		Input:             "ctx",
		Role:              "Intern",
		Industry:          "Retail",
		Tone:              "BOLD",
		GoalNote:          " g ",
		MakeClientFocused: true,
	}.Normalize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, account.ModeStudent, in.Mode)
	assert.Equal(t, "Retail", in.Industry)
	assert.Equal(t, "bold", in.Tone)
	assert.Equal(t, "g", in.GoalNote)
	assert.True(t, in.MakeClientFocused)
}
