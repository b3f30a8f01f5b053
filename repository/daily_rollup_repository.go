package repository

import (
	"context"
	"errors"
	"time"

	"partnerledger/database"
	"partnerledger/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DailyRollupRepository implements the DailyRollupRepository interface
type DailyRollupRepository struct {
	q queryable
}

// NewDailyRollupRepository creates a new daily rollup repository
func NewDailyRollupRepository(db *database.DB) *DailyRollupRepository {
	return &DailyRollupRepository{q: db.Pool}
}

// newDailyRollupRepositoryWithTx creates a new daily rollup repository with a transaction
func newDailyRollupRepositoryWithTx(tx queryable) *DailyRollupRepository {
	return &DailyRollupRepository{q: tx}
}

// Accumulate adds amount to the (partnerID, day) rollup in one statement. Concurrent first
// writers for the same key serialize on the unique constraint instead of inserting twice.
func (r *DailyRollupRepository) Accumulate(ctx context.Context, partnerID int64, day time.Time, amount decimal.Decimal) (*models.DailyRollup, error) {
	query := `
		INSERT INTO daily_rollups (partner_id, day, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (partner_id, day)
		DO UPDATE SET amount = daily_rollups.amount + EXCLUDED.amount, updated_at = NOW()
		RETURNING id, partner_id, day, amount, created_at, updated_at
	`

	var rollup models.DailyRollup
	err := r.q.QueryRow(ctx, query, partnerID, day, amount).Scan(
		&rollup.ID,
		&rollup.PartnerID,
		&rollup.Day,
		&rollup.Amount,
		&rollup.CreatedAt,
		&rollup.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(err, "failed to accumulate rollup for partner %d", partnerID)
	}

	return &rollup, nil
}

// GetByDay returns the rollup for (partnerID, day), or nil when there is none
func (r *DailyRollupRepository) GetByDay(ctx context.Context, partnerID int64, day time.Time) (*models.DailyRollup, error) {
	query := `
		SELECT id, partner_id, day, amount, created_at, updated_at
		FROM daily_rollups
		WHERE partner_id = $1 AND day = $2
	`

	var rollup models.DailyRollup
	err := r.q.QueryRow(ctx, query, partnerID, day).Scan(
		&rollup.ID,
		&rollup.PartnerID,
		&rollup.Day,
		&rollup.Amount,
		&rollup.CreatedAt,
		&rollup.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get rollup for partner %d", partnerID)
	}

	return &rollup, nil
}

// SumBefore sums the partner's rollups for days strictly before before
func (r *DailyRollupRepository) SumBefore(ctx context.Context, partnerID int64, before time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM daily_rollups
		WHERE partner_id = $1 AND day < $2
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, partnerID, before).Scan(&sum); err != nil {
		return decimal.Zero, wrapError(err, "failed to sum rollups for partner %d", partnerID)
	}

	return sum, nil
}

// GetByPartner returns every rollup of the partner ordered by day
func (r *DailyRollupRepository) GetByPartner(ctx context.Context, partnerID int64) ([]*models.DailyRollup, error) {
	query := `
		SELECT id, partner_id, day, amount, created_at, updated_at
		FROM daily_rollups
		WHERE partner_id = $1
		ORDER BY day ASC
	`

	rows, err := r.q.Query(ctx, query, partnerID)
	if err != nil {
		return nil, wrapError(err, "failed to query rollups for partner %d", partnerID)
	}
	defer rows.Close()

	var rollups []*models.DailyRollup
	for rows.Next() {
		var rollup models.DailyRollup
		err := rows.Scan(
			&rollup.ID,
			&rollup.PartnerID,
			&rollup.Day,
			&rollup.Amount,
			&rollup.CreatedAt,
			&rollup.UpdatedAt,
		)
		if err != nil {
			return nil, wrapError(err, "failed to scan rollup")
		}
		rollups = append(rollups, &rollup)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating rollups")
	}

	return rollups, nil
}
