package requests

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/proposal"
)

// GenerateProposalRequest is the body of a generation call. Field names follow the web client.
type GenerateProposalRequest struct {
	Mode              string `json:"mode" validate:"mode" example:"freelancer"`
	Input             string `json:"input" validate:"required,max=8000" example:"Bakery owner wants a new ordering site"`
	Role              string `json:"role" validate:"required,max=200" example:"Web developer"`
	Industry          string `json:"industry" validate:"max=200" example:"Food & Beverage"`
	Goal              string `json:"goal" validate:"max=200"`
	Priority          string `json:"priority" validate:"max=200"`
	Tone              string `json:"tone" validate:"max=50" example:"bold"`
	GoalNote          string `json:"goalNote" validate:"max=2000"`
	PriorityNote      string `json:"priorityNote" validate:"max=2000"`
	ContextNote       string `json:"contextNote" validate:"max=2000"`
	MakeClientFocused bool   `json:"makeClientFocused"`
	Stream            bool   `json:"stream"`
}

// ToDomain maps the body onto the pipeline request.
func (r GenerateProposalRequest) ToDomain() proposal.Request {
	return proposal.Request{
		Mode:              r.Mode,
		Input:             r.Input,
		Role:              r.Role,
		Industry:          r.Industry,
		Goal:              r.Goal,
		Priority:          r.Priority,
		Tone:              r.Tone,
		GoalNote:          r.GoalNote,
		PriorityNote:      r.PriorityNote,
		ContextNote:       r.ContextNote,
		MakeClientFocused: r.MakeClientFocused,
	}
}

// ListProposalsQuery pages through the caller's proposals.
type ListProposalsQuery struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}

const DefaultListLimit = 20

// NewValidator returns a validator with the rules request bodies use.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// an empty mode is allowed and defaults to freelancer
	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		if raw == "" {
			return true
		}
		_, err := account.ParseMode(raw)
		return err == nil
	})
	return validate
}

// ValidationMessage turns validator errors into a short client message.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request"
	}
	first := verrs[0]
	field := lowerFirst(first.Field())
	switch first.Tag() {
	case "required":
		return field + " is required"
	case "mode":
		return "unknown mode"
	case "max":
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
