package repository

import (
	"context"
	"testing"

	"partnerledger/repository/testutil"
	"partnerledger/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerRepository_GetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewPartnerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("partner not found", func(t *testing.T) {
		partner, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, partner)
	})

	t.Run("partner found", func(t *testing.T) {
		created := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("12.3456"))

		partner, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, partner)

		assert.Equal(t, created.ID, partner.ID)
		assert.True(t, partner.Balance.Equal(testutil.Amount("12.3456")))
		assert.False(t, partner.CreatedAt.IsZero())
	})
}

func TestPartnerRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewPartnerRepository(testDB.DB)
	ctx := context.Background()

	first, err := repo.Create(ctx)
	require.NoError(t, err)
	second, err := repo.Create(ctx)
	require.NoError(t, err)

	assert.True(t, first.Balance.IsZero())
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.UpdatedAt.IsZero())
}

func TestPartnerRepository_AddBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewPartnerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("applies signed deltas", func(t *testing.T) {
		partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("0"))

		balance, version, err := repo.AddBalance(ctx, partner.ID, testutil.Amount("0.1"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(testutil.Amount("0.1")))
		assert.Equal(t, int64(1), version)

		balance, version, err = repo.AddBalance(ctx, partner.ID, testutil.Amount("0.2"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(testutil.Amount("0.3")))
		assert.Equal(t, int64(2), version)

		balance, version, err = repo.AddBalance(ctx, partner.ID, testutil.Amount("-1.3"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(testutil.Amount("-1")))
		assert.Equal(t, int64(3), version)

		stored, err := repo.GetByID(ctx, partner.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(testutil.Amount("-1")))
		assert.Equal(t, int64(3), stored.Version)
	})

	t.Run("balance overflow", func(t *testing.T) {
		partner := testutil.CreateTestPartner(t, testDB.DB, testutil.Amount("9999999999999999999999999999"))

		_, _, err := repo.AddBalance(ctx, partner.ID, testutil.Amount("1"))
		assert.ErrorIs(t, err, service.ErrBalanceOutOfRange)

		stored, err := repo.GetByID(ctx, partner.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(testutil.Amount("9999999999999999999999999999")))
		assert.Equal(t, int64(0), stored.Version)
	})

	t.Run("unknown partner", func(t *testing.T) {
		_, _, err := repo.AddBalance(ctx, 999999, testutil.Amount("1"))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
