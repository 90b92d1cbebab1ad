package prompt

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"jan-server/services/proposal-api/internal/domain/account"
)

//go:embed policies.yaml
var policiesYAML []byte

// ClosingKind is the required closing action of a policy.
type ClosingKind string

const (
	ClosingQuestion     ClosingKind = "question"
	ClosingCallToAction ClosingKind = "call-to-action"
)

// Closing describes how a generated message must end.
type Closing struct {
	Kind        ClosingKind `yaml:"kind"`
	Instruction string      `yaml:"instruction"`
}

// Policy is the style contract of one mode.
type Policy struct {
	Mode        account.Mode `yaml:"-"`
	Persona     string       `yaml:"persona"`
	Opening     string       `yaml:"opening"`
	Closing     Closing      `yaml:"closing"`
	MaxWords    int          `yaml:"max_words"`
	Temperature float32      `yaml:"temperature"`
	MaxTokens   int          `yaml:"max_tokens"`
	DefaultTone string       `yaml:"default_tone"`
	Forbidden   []string     `yaml:"forbidden"`
	Rules       []string     `yaml:"rules"`
}

type policyFile struct {
	Policies map[string]Policy `yaml:"policies"`
}

// LoadPolicies decodes policy definitions and checks that every mode has exactly one.
func LoadPolicies(data []byte) (map[account.Mode]Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode style policies: %w", err)
	}

	policies := make(map[account.Mode]Policy, len(file.Policies))
	for name, policy := range file.Policies {
		mode, err := account.ParseMode(name)
		if err != nil || name == "" {
			return nil, fmt.Errorf("style policy for unknown mode %q", name)
		}
		if policy.MaxWords <= 0 {
			return nil, fmt.Errorf("style policy %q: max_words must be positive", name)
		}
		switch policy.Closing.Kind {
		case ClosingQuestion, ClosingCallToAction:
		default:
			return nil, fmt.Errorf("style policy %q: unsupported closing kind %q", name, policy.Closing.Kind)
		}
		policy.Mode = mode
		policies[mode] = policy
	}

	for _, mode := range account.Modes() {
		if _, ok := policies[mode]; !ok {
			return nil, fmt.Errorf("style policy missing for mode %q", mode)
		}
	}
	return policies, nil
}

// DefaultPolicies returns the embedded policies.
func DefaultPolicies() (map[account.Mode]Policy, error) {
	return LoadPolicies(policiesYAML)
}
