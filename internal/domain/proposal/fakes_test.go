package proposal

import (
	"context"
	"errors"
	"sync"
	"time"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/tokenusage"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	counters map[uint]map[account.Mode]int
	nextID   uint
	resolves int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]account.Account{}, counters: map[uint]map[account.Mode]int{}}
}

func (f *fakeAccounts) seed(subject string, plan account.Plan, active bool, usage map[account.Mode]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.accounts[subject] = account.Account{ID: f.nextID, Subject: subject, Plan: plan, SubscriptionActive: active}
	counters := map[account.Mode]int{}
	for m, v := range usage {
		counters[m] = v
	}
	f.counters[f.nextID] = counters
}

func (f *fakeAccounts) used(subject string, mode account.Mode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[subject]
	if !ok {
		return -1
	}
	return f.counters[acct.ID][mode]
}

func (f *fakeAccounts) GetOrCreate(_ context.Context, identity account.Identity, modes []account.Mode) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	acct, ok := f.accounts[identity.Subject]
	if !ok {
		f.nextID++
		acct = account.Account{ID: f.nextID, Subject: identity.Subject, Email: identity.Email, Plan: account.PlanFree}
		f.accounts[identity.Subject] = acct
		f.counters[acct.ID] = map[account.Mode]int{}
	}
	for _, m := range modes {
		if _, exists := f.counters[acct.ID][m]; !exists {
			f.counters[acct.ID][m] = 0
		}
	}
	out := acct
	out.Usage = map[account.Mode]int{}
	for m, v := range f.counters[acct.ID] {
		out.Usage[m] = v
	}
	return &out, nil
}

func (f *fakeAccounts) FindBySubject(ctx context.Context, subject string) (*account.Account, error) {
	return f.GetOrCreate(ctx, account.Identity{Subject: subject}, nil)
}

func (f *fakeAccounts) IncrementUsage(ctx context.Context, accountID uint, mode account.Mode, ceiling int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	counters := f.counters[accountID]
	if counters == nil {
		return false, nil
	}
	if ceiling > 0 && counters[mode] >= ceiling {
		return false, nil
	}
	counters[mode]++
	return true, nil
}

type fakeProposals struct {
	mu          sync.Mutex
	rows        map[uint]Proposal
	nextID      uint
	createErr   error
	finalizeErr error
	finalized   chan uint
	// afterCreate runs once a row is stored
	afterCreate func()
}

func newFakeProposals() *fakeProposals {
	return &fakeProposals{rows: map[uint]Proposal{}, finalized: make(chan uint, 8)}
}

func (f *fakeProposals) Create(_ context.Context, p *Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	f.rows[p.ID] = *p
	if f.afterCreate != nil {
		f.afterCreate()
	}
	return nil
}

func (f *fakeProposals) Finalize(_ context.Context, id uint, c Completion) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return false, f.finalizeErr
	}
	row, ok := f.rows[id]
	if !ok || row.Status != StatusPending {
		return false, nil
	}
	row.Content = c.Content
	row.Status = c.Status
	row.Reason = c.Reason
	f.rows[id] = row
	f.finalized <- id
	return true, nil
}

func (f *fakeProposals) FindByPublicID(_ context.Context, accountID uint, publicID string) (*Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.AccountID == accountID && row.PublicID == publicID {
			out := row
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeProposals) ListByAccount(_ context.Context, accountID uint, _, _ int) ([]*Proposal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Proposal
	for _, row := range f.rows {
		if row.AccountID == accountID {
			r := row
			out = append(out, &r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProposals) CountPendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.Status == StatusPending && row.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (f *fakeProposals) get(id uint) Proposal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeProposals) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeStream struct {
	chunks   chan string
	detached bool
}

func (s *fakeStream) Chunks() <-chan string { return s.chunks }
func (s *fakeStream) Detach() { s.detached = true }

type fakeGenerator struct {
	mu         sync.Mutex
	result     GenerationResult
	err        error
	streamErr  error
	calls      int
	lastParams GenerationParams
	lastStream *fakeStream
	onComplete CompletionFunc
}

func (g *fakeGenerator) Complete(_ context.Context, params GenerationParams) (GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastParams = params
	return g.result, g.err
}

func (g *fakeGenerator) Stream(_ context.Context, params GenerationParams, onComplete CompletionFunc) (TextStream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastParams = params
	if g.streamErr != nil {
		return nil, g.streamErr
	}
	g.onComplete = onComplete
	g.lastStream = &fakeStream{chunks: make(chan string)}
	return g.lastStream, nil
}

// finish ends the current stream the way a producer would.
func (g *fakeGenerator) finish(result GenerationResult, err error) {
	g.mu.Lock()
	cb := g.onComplete
	stream := g.lastStream
	g.mu.Unlock()
	close(stream.chunks)
	cb(result, err)
}

type fakeUsage struct {
	mu      sync.Mutex
	records []*tokenusage.TokenUsage
}

func (f *fakeUsage) RecordUsage(_ context.Context, usage *tokenusage.TokenUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, usage)
	return nil
}
