package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"partnerledger/events"
	"partnerledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var wg sync.WaitGroup
	wg.Add(1)
	var received events.BalanceChangedEvent
	bus.Subscribe(events.EventTypeBalanceChanged, func(ctx context.Context, event events.Event) {
		defer wg.Done()
		received = event.(events.BalanceChangedEvent)
	})

	partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("0"))
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	balance, _, err := uow.PartnerRepository().AddBalance(ctx, partner.ID, testutil.Amount("5"))
	require.NoError(t, err)
	uow.EventBus().Publish(events.BalanceChangedEvent{PartnerID: partner.ID, NewBalance: balance})

	require.NoError(t, uow.Commit())

	waitOrFail(t, &wg)
	assert.Equal(t, partner.ID, received.PartnerID)

	stored, err := NewPartnerRepository(testDB.DB).GetByID(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(testutil.Amount("5")))
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	delivered := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeBalanceChanged, func(ctx context.Context, event events.Event) {
		delivered <- struct{}{}
	})

	partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("1"))
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, _, err := uow.PartnerRepository().AddBalance(ctx, partner.ID, testutil.Amount("5"))
	require.NoError(t, err)
	_, err = uow.DailyRollupRepository().Accumulate(ctx, partner.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), testutil.Amount("5"))
	require.NoError(t, err)
	uow.EventBus().Publish(events.BalanceChangedEvent{PartnerID: partner.ID})

	require.NoError(t, uow.Rollback())
	// A second rollback is a no-op
	require.NoError(t, uow.Rollback())

	stored, err := NewPartnerRepository(testDB.DB).GetByID(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(testutil.Amount("1")))
	assert.Equal(t, 0, testutil.CountRollups(t, testDB.DB, partner.ID))

	select {
	case <-delivered:
		t.Fatal("event delivered after rollback")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	uow := NewUnitOfWorkFactory(nil, nil).Create()

	assert.Panics(t, func() { uow.PartnerRepository() })
	assert.Panics(t, func() { uow.TransactionRepository() })
	assert.Panics(t, func() { uow.DailyRollupRepository() })
	assert.Error(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}
