package accountrepo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/infrastructure/database/databasetest"
	"jan-server/services/proposal-api/internal/infrastructure/database/dbschema"
)

func TestGetOrCreateProvisionsZeroCounters(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewAccountGormRepository(db)
	ctx := context.Background()

	acct, err := repo.GetOrCreate(ctx, account.Identity{Subject: "sub-1", Email: "a@example.com"}, account.Modes())
	require.NoError(t, err)
	assert.NotZero(t, acct.ID)
	assert.Equal(t, account.PlanFree, acct.Plan)
	assert.False(t, acct.SubscriptionActive)
	assert.Equal(t, "a@example.com", acct.Email)
	assert.Equal(t, map[account.Mode]int{account.ModeFreelancer: 0, account.ModeStudent: 0}, acct.Usage)

	again, err := repo.GetOrCreate(ctx, account.Identity{Subject: "sub-1"}, account.Modes())
	require.NoError(t, err)
	assert.Equal(t, acct.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&dbschema.Account{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&dbschema.AccountUsage{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGetOrCreateConcurrentCallersShareRecord(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewAccountGormRepository(db)

	var wg sync.WaitGroup
	ids := make([]uint, 6)
	errs := make([]error, 6)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acct, err := repo.GetOrCreate(context.Background(), account.Identity{Subject: "racer"}, account.Modes())
			errs[i] = err
			if acct != nil {
				ids[i] = acct.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestFindBySubject(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewAccountGormRepository(db)
	ctx := context.Background()

	missing, err := repo.FindBySubject(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetOrCreate(ctx, account.Identity{Subject: "sub-2"}, account.Modes())
	require.NoError(t, err)
	found, err := repo.FindBySubject(ctx, "sub-2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.Usage, 2)
}

func TestIncrementUsageIsGuarded(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewAccountGormRepository(db)
	ctx := context.Background()

	acct, err := repo.GetOrCreate(ctx, account.Identity{Subject: "sub-3"}, account.Modes())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		applied, err := repo.IncrementUsage(ctx, acct.ID, account.ModeFreelancer, 3)
		require.NoError(t, err)
		require.True(t, applied)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.IncrementUsage(context.Background(), acct.ID, account.ModeFreelancer, 3)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	reloaded, err := repo.FindBySubject(ctx, "sub-3")
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Used(account.ModeFreelancer))
	assert.Equal(t, 0, reloaded.Used(account.ModeStudent))
}

func TestIncrementUsageWithoutCeiling(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewAccountGormRepository(db)
	ctx := context.Background()

	acct, err := repo.GetOrCreate(ctx, account.Identity{Subject: "sub-4"}, account.Modes())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		applied, err := repo.IncrementUsage(ctx, acct.ID, account.ModeStudent, 0)
		require.NoError(t, err)
		assert.True(t, applied)
	}
	reloaded, err := repo.FindBySubject(ctx, "sub-4")
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Used(account.ModeStudent))
}
