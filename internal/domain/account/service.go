package account

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

// ErrProfileUnavailable signals that the account record could neither be read nor created.
var ErrProfileUnavailable = errors.New("profile unavailable")

// Resolver maps a verified identity to its account record, provisioning it on first use.
type Resolver struct {
	repo   Repository
	ledger *Ledger
	log    zerolog.Logger
}

func NewResolver(repo Repository, ledger *Ledger, log zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		ledger: ledger,
		log:    log.With().Str("component", "account-resolver").Logger(),
	}
}

// Resolve returns the account of identity, creating it with zero counters if absent.
func (r *Resolver) Resolve(ctx context.Context, identity Identity) (*Account, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "identity subject is empty", ErrProfileUnavailable, "2f8a9c1e-6b4d-4e0a-9d7f-3c5b8e1a2d40")
	}

	acct, err := r.repo.GetOrCreate(ctx, identity, Modes())
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "unable to resolve account", errors.Join(ErrProfileUnavailable, err), "7c1d4e9b-0a3f-4b6e-8c2d-5f9a1b7e3c64")
	}
	if acct.Usage == nil {
		acct.Usage = map[Mode]int{}
	}
	return acct, nil
}

// Status summarises the quota of acct for every mode.
func (r *Resolver) Status(acct *Account) []ModeStatus {
	modes := Modes()
	statuses := make([]ModeStatus, 0, len(modes))
	for _, mode := range modes {
		statuses = append(statuses, ModeStatus{
			Mode:      mode,
			Used:      acct.Used(mode),
			Limit:     r.ledger.Limits().For(mode),
			Remaining: r.ledger.Remaining(acct, mode),
		})
	}
	return statuses
}

// ModeStatus is the quota position of one mode.
type ModeStatus struct {
	Mode      Mode
	Used      int
	Limit     int
	Remaining int
}
