package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"jan-server/services/proposal-api/internal/domain/account"
)

// RiskAugmentation is appended to the system instruction for pro-and-active accounts that ask for it.
const RiskAugmentation = "Address client decision risk explicitly"

// Input carries the structured request fields the composer reads.
type Input struct {
	Mode              account.Mode
	Context           string
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

// Composed is the instruction pair plus the generation parameters chosen by the policy.
type Composed struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	Policy      Policy
}

var systemTemplate = template.Must(template.New("system").Parse(`You are {{ .Policy.Persona }}.
Rules:
- Max {{ .Policy.MaxWords }} words
{{- range .Policy.Rules }}
- {{ . }}
{{- end }}
- {{ .Policy.Opening }}
- {{ .Policy.Closing.Instruction }}
{{- if .Policy.Forbidden }}
- Never use these phrases: {{ .Forbidden }}
{{- end }}
{{- if .Augment }}
- {{ .Augmentation }}
{{- end }}`))

var userTemplate = template.Must(template.New("user").Parse(`Client context: {{ .Context }}
Role: {{ .Role }}
Industry: {{ .Industry }}
Goal: {{ .Goal }}
Priority: {{ .Priority }}
Tone: {{ .Tone }}
Notes: {{ .Notes }}`))

// Composer maps a request to generation instructions. It performs no I/O.
type Composer struct {
	policies map[account.Mode]Policy
}

func NewComposer(policies map[account.Mode]Policy) *Composer {
	return &Composer{policies: policies}
}

// NewDefaultComposer builds a composer over the embedded policies.
func NewDefaultComposer() (*Composer, error) {
	policies, err := DefaultPolicies()
	if err != nil {
		return nil, err
	}
	return NewComposer(policies), nil
}

// Policy returns the style policy of mode.
func (c *Composer) Policy(mode account.Mode) (Policy, bool) {
	policy, ok := c.policies[mode]
	return policy, ok
}

// Compose renders the instructions for in. proActive gates the risk augmentation:
// requesting it without pro status is silently ignored.
func (c *Composer) Compose(in Input, proActive bool) (Composed, error) {
	policy, ok := c.policies[in.Mode]
	if !ok {
		return Composed{}, fmt.Errorf("%w: %q", account.ErrUnknownMode, in.Mode)
	}

	tone := strings.TrimSpace(in.Tone)
	if tone == "" {
		tone = policy.DefaultTone
	}

	var system strings.Builder
	if err := systemTemplate.Execute(&system, map[string]any{
		"Policy":       policy,
		"Forbidden":    quoteAll(policy.Forbidden),
		"Augment":      in.MakeClientFocused && proActive,
		"Augmentation": RiskAugmentation,
	}); err != nil {
		return Composed{}, fmt.Errorf("render system instruction: %w", err)
	}

	var user strings.Builder
	if err := userTemplate.Execute(&user, map[string]any{
		"Context":  singleLine(in.Context),
		"Role":     singleLine(in.Role),
		"Industry": singleLine(in.Industry),
		"Goal":     singleLine(in.Goal),
		"Priority": singleLine(in.Priority),
		"Tone":     tone,
		"Notes":    joinNotes(in.GoalNote, in.PriorityNote, in.ContextNote),
	}); err != nil {
		return Composed{}, fmt.Errorf("render user instruction: %w", err)
	}

	return Composed{
		System:      system.String(),
		User:        user.String(),
		Temperature: policy.Temperature,
		MaxTokens:   policy.MaxTokens,
		Policy:      policy,
	}, nil
}

func quoteAll(phrases []string) string {
	quoted := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		quoted = append(quoted, fmt.Sprintf("%q", phrase))
	}
	return strings.Join(quoted, ", ")
}

func joinNotes(notes ...string) string {
	parts := make([]string, 0, len(notes))
	for _, note := range notes {
		if trimmed := singleLine(note); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// singleLine collapses whitespace so user text cannot forge extra instruction lines.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
