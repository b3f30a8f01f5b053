package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"partnerledger/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRollupRepository_Accumulate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyRollupRepository(testDB.DB)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("0"))
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates then increments", func(t *testing.T) {
		rollup, err := repo.Accumulate(ctx, partner.ID, day, testutil.Amount("1.5"))
		require.NoError(t, err)
		assert.True(t, rollup.Amount.Equal(testutil.Amount("1.5")))
		assert.True(t, rollup.Day.Equal(day))

		rollup, err = repo.Accumulate(ctx, partner.ID, day, testutil.Amount("-0.5"))
		require.NoError(t, err)
		assert.True(t, rollup.Amount.Equal(testutil.Amount("1")))

		stored, err := repo.GetByDay(ctx, partner.ID, day)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, rollup.ID, stored.ID)
		assert.True(t, stored.Amount.Equal(testutil.Amount("1")))
	})

	t.Run("missing day", func(t *testing.T) {
		stored, err := repo.GetByDay(ctx, partner.ID, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestDailyRollupRepository_ConcurrentFirstWriters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyRollupRepository(testDB.DB)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("0"))
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Accumulate(ctx, partner.ID, day, testutil.Amount("0.25"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, testutil.CountRollups(t, testDB.DB, partner.ID))

	stored, err := repo.GetByDay(ctx, partner.ID, day)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(5)), "got %s", stored.Amount)
}

func TestDailyRollupRepository_SumBefore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyRollupRepository(testDB.DB)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("0"))
	day1 := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	for day, amount := range map[time.Time]string{day1: "1", day2: "10", day3: "100"} {
		_, err := repo.Accumulate(ctx, partner.ID, day, testutil.Amount(amount))
		require.NoError(t, err)
	}

	sum, err := repo.SumBefore(ctx, partner.ID, day3)
	require.NoError(t, err)
	assert.True(t, sum.Equal(testutil.Amount("11")), "got %s", sum)

	sum, err = repo.SumBefore(ctx, partner.ID, day1)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	rollups, err := repo.GetByPartner(ctx, partner.ID)
	require.NoError(t, err)
	require.Len(t, rollups, 3)
	assert.True(t, rollups[0].Day.Equal(day1))
	assert.True(t, rollups[2].Day.Equal(day3))
}
