package account

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownMode is returned for a mode outside the configured set.
var ErrUnknownMode = errors.New("unknown mode")

// Mode is a named usage context with its own limit and style policy.
type Mode string

const (
	ModeFreelancer Mode = "freelancer"
	ModeStudent    Mode = "student"
)

// DefaultMode applies when a request names no mode.
const DefaultMode = ModeFreelancer

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeFreelancer, ModeStudent}
}

// ParseMode resolves a raw mode value. Empty input selects DefaultMode.
func ParseMode(raw string) (Mode, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return DefaultMode, nil
	}
	mode := Mode(trimmed)
	if !mode.Valid() {
		return "", ErrUnknownMode
	}
	return mode, nil
}

// Valid reports whether the mode is supported.
func (m Mode) Valid() bool {
	switch m {
	case ModeFreelancer, ModeStudent:
		return true
	}
	return false
}

// Plan is the billing tier of an account.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Identity is the verified identity an account is keyed by.
type Identity struct {
	Subject string
	Email   string
}

// Account is the per-identity ledger record.
type Account struct {
	ID                 uint
	Subject            string
	Email              string
	Plan               Plan
	SubscriptionActive bool
	Usage              map[Mode]int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsProActive reports whether quota enforcement is lifted for the account.
func (a *Account) IsProActive() bool {
	return a != nil && a.Plan == PlanPro && a.SubscriptionActive
}

// Used returns the consumption counter for mode.
func (a *Account) Used(mode Mode) int {
	if a == nil || a.Usage == nil {
		return 0
	}
	return a.Usage[mode]
}
