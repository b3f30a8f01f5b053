package repository

import (
	"context"
	"time"

	"partnerledger/database"
	"partnerledger/models"

	"github.com/shopspring/decimal"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create appends a transaction to the log
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (partner_id, amount, occurred_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, tx.PartnerID, tx.Amount, tx.OccurredAt).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return wrapError(err, "failed to create transaction for partner %d", tx.PartnerID)
	}

	return nil
}

// SumBetween sums amounts with occurred_at in [from, to], both ends inclusive
func (r *TransactionRepository) SumBetween(ctx context.Context, partnerID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE partner_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, partnerID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, wrapError(err, "failed to sum transactions for partner %d", partnerID)
	}

	return sum, nil
}

// SumUpTo sums amounts with occurred_at <= asOf
func (r *TransactionRepository) SumUpTo(ctx context.Context, partnerID int64, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE partner_id = $1 AND occurred_at <= $2
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, partnerID, asOf).Scan(&sum); err != nil {
		return decimal.Zero, wrapError(err, "failed to sum transactions for partner %d", partnerID)
	}

	return sum, nil
}

// GetByPartner returns the partner's most recent transactions, newest first
func (r *TransactionRepository) GetByPartner(ctx context.Context, partnerID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, partner_id, amount, occurred_at, created_at
		FROM transactions
		WHERE partner_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, partnerID, limit)
	if err != nil {
		return nil, wrapError(err, "failed to query transactions for partner %d", partnerID)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.PartnerID,
			&tx.Amount,
			&tx.OccurredAt,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, wrapError(err, "failed to scan transaction")
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating transactions")
	}

	return transactions, nil
}
