package proposal

import (
	"context"
	"time"

	"jan-server/services/proposal-api/internal/domain/tokenusage"
)

// Repository persists generated artifacts.
type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	// Finalize moves a pending artifact to its terminal state. updated is false when
	// the row was no longer pending.
	Finalize(ctx context.Context, id uint, completion Completion) (updated bool, err error)
	FindByPublicID(ctx context.Context, accountID uint, publicID string) (*Proposal, error)
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*Proposal, int64, error)
	CountPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UsageRecorder records token accounting for finished generations.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, usage *tokenusage.TokenUsage) error
}
