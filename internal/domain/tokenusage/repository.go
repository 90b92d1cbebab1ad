package tokenusage

import "context"

// Repository defines the interface for token usage data access
type Repository interface {
	// Create stores a new token usage record
	Create(ctx context.Context, usage *TokenUsage) error

	// SummarizeByAccount aggregates the usage of an account grouped by model
	SummarizeByAccount(ctx context.Context, accountID uint) ([]UsageSummary, error)
}
