package account

import (
	"context"
	"sync"
)

// fakeRepository keeps persisted state apart from the records it hands out,
// the way a database would.
type fakeRepository struct {
	mu         sync.Mutex
	accounts   map[string]Account
	counters   map[uint]map[Mode]int
	nextID     uint
	getErr     error
	incErr     error
	increments int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts: map[string]Account{},
		counters: map[uint]map[Mode]int{},
	}
}

func (f *fakeRepository) seed(acct Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct.ID == 0 {
		f.nextID++
		acct.ID = f.nextID
	}
	counters := map[Mode]int{}
	for m, v := range acct.Usage {
		counters[m] = v
	}
	acct.Usage = nil
	f.accounts[acct.Subject] = acct
	f.counters[acct.ID] = counters
}

func (f *fakeRepository) GetOrCreate(_ context.Context, identity Identity, modes []Mode) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	acct, ok := f.accounts[identity.Subject]
	if !ok {
		f.nextID++
		acct = Account{ID: f.nextID, Subject: identity.Subject, Email: identity.Email, Plan: PlanFree}
		f.accounts[identity.Subject] = acct
		f.counters[acct.ID] = map[Mode]int{}
	}
	for _, m := range modes {
		if _, exists := f.counters[acct.ID][m]; !exists {
			f.counters[acct.ID][m] = 0
		}
	}
	return f.snapshot(acct), nil
}

func (f *fakeRepository) FindBySubject(_ context.Context, subject string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[subject]
	if !ok {
		return nil, nil
	}
	return f.snapshot(acct), nil
}

func (f *fakeRepository) IncrementUsage(_ context.Context, accountID uint, mode Mode, ceiling int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return false, f.incErr
	}
	counters, ok := f.counters[accountID]
	if !ok {
		return false, nil
	}
	if _, exists := counters[mode]; !exists {
		return false, nil
	}
	if ceiling > 0 && counters[mode] >= ceiling {
		return false, nil
	}
	counters[mode]++
	f.increments++
	return true, nil
}

func (f *fakeRepository) count(subject string, mode Mode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[f.accounts[subject].ID][mode]
}

func (f *fakeRepository) snapshot(acct Account) *Account {
	usage := make(map[Mode]int, len(f.counters[acct.ID]))
	for m, v := range f.counters[acct.ID] {
		usage[m] = v
	}
	acct.Usage = usage
	return &acct
}
