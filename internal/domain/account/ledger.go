package account

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Unmetered is reported as remaining quota for pro-and-active accounts.
const Unmetered = -1

// Limits maps each mode to its free-tier generation limit.
type Limits map[Mode]int

// NewLimits converts configuration values keyed by mode name.
func NewLimits(raw map[string]int) Limits {
	limits := make(Limits, len(raw))
	for name, limit := range raw {
		limits[Mode(name)] = limit
	}
	return limits
}

// For returns the limit of mode; unknown modes have no allowance.
func (l Limits) For(mode Mode) int {
	return l[mode]
}

// Ledger answers quota questions and records consumption.
type Ledger struct {
	limits Limits
	repo   Repository
	log    zerolog.Logger
}

func NewLedger(limits Limits, repo Repository, log zerolog.Logger) *Ledger {
	return &Ledger{
		limits: limits,
		repo:   repo,
		log:    log.With().Str("component", "quota-ledger").Logger(),
	}
}

// Limits exposes the configured limits.
func (l *Ledger) Limits() Limits {
	return l.limits
}

// CheckAllowed reports whether the account may run one more generation in mode.
func (l *Ledger) CheckAllowed(acct *Account, mode Mode) bool {
	if acct.IsProActive() {
		return true
	}
	return acct.Used(mode) < l.limits.For(mode)
}

// Remaining returns the generations left in mode, or Unmetered.
func (l *Ledger) Remaining(acct *Account, mode Mode) int {
	if acct.IsProActive() {
		return Unmetered
	}
	remaining := l.limits.For(mode) - acct.Used(mode)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordUsage consumes one generation of mode. Pro-and-active accounts are not metered.
// The increment is guarded by the mode limit at the store, so concurrent requests that
// both passed CheckAllowed cannot push the counter past it; the loser is reported as
// not applied.
func (l *Ledger) RecordUsage(ctx context.Context, acct *Account, mode Mode) (bool, error) {
	if acct.IsProActive() {
		return false, nil
	}
	applied, err := l.repo.IncrementUsage(ctx, acct.ID, mode, l.limits.For(mode))
	if err != nil {
		return false, fmt.Errorf("increment %s usage: %w", mode, err)
	}
	if !applied {
		l.log.Warn().
			Uint("account_id", acct.ID).
			Str("mode", string(mode)).
			Msg("usage increment not applied, counter already at limit")
		return false, nil
	}
	if acct.Usage == nil {
		acct.Usage = map[Mode]int{}
	}
	acct.Usage[mode]++
	return true, nil
}
