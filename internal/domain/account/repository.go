package account

import "context"

// Repository persists account records and their per-mode counters.
type Repository interface {
	// GetOrCreate returns the account for identity, inserting a free account with zero
	// counters for modes when none exists. Concurrent callers observe the same record.
	GetOrCreate(ctx context.Context, identity Identity, modes []Mode) (*Account, error)
	FindBySubject(ctx context.Context, subject string) (*Account, error)
	// IncrementUsage adds one to the counter of mode. When ceiling is positive the update
	// only applies while the counter is below it; applied reports whether a row changed.
	IncrementUsage(ctx context.Context, accountID uint, mode Mode, ceiling int) (applied bool, err error)
}
