package testutil

import (
	"context"
	"testing"
	"time"

	"partnerledger/database"
	"partnerledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Amount parses a decimal literal, failing loudly on typos in test tables
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestPartner inserts a partner with the given balance directly, bypassing the ledger
func CreateTestPartner(t *testing.T, db *database.DB, balance decimal.Decimal) *models.Partner {
	t.Helper()

	var partner models.Partner
	err := db.QueryRow(context.Background(), `
		INSERT INTO partners (balance)
		VALUES ($1)
		RETURNING id, balance, version, created_at, updated_at
	`, balance).Scan(&partner.ID, &partner.Balance, &partner.Version, &partner.CreatedAt, &partner.UpdatedAt)
	require.NoError(t, err)

	return &partner
}

// CreateTestTransaction inserts a raw log row without touching the balance or rollups
func CreateTestTransaction(t *testing.T, db *database.DB, partnerID int64, amount decimal.Decimal, occurredAt time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		PartnerID:  partnerID,
		Amount:     amount,
		OccurredAt: occurredAt,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO transactions (partner_id, amount, occurred_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, partnerID, amount, occurredAt).Scan(&tx.ID, &tx.CreatedAt)
	require.NoError(t, err)

	return tx
}

// CountRollups returns the number of rollup rows stored for a partner
func CountRollups(t *testing.T, db *database.DB, partnerID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM daily_rollups WHERE partner_id = $1`, partnerID).Scan(&count)
	require.NoError(t, err)

	return count
}

// CountTransactions returns the number of log rows stored for a partner
func CountTransactions(t *testing.T, db *database.DB, partnerID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM transactions WHERE partner_id = $1`, partnerID).Scan(&count)
	require.NoError(t, err)

	return count
}
