package repository

import (
	"context"
	"errors"
	"fmt"

	"partnerledger/database"
	"partnerledger/models"
	"partnerledger/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PartnerRepository implements the PartnerRepository interface
type PartnerRepository struct {
	q queryable
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db *database.DB) *PartnerRepository {
	return &PartnerRepository{q: db.Pool}
}

// newPartnerRepositoryWithTx creates a new partner repository with a transaction
func newPartnerRepositoryWithTx(tx queryable) *PartnerRepository {
	return &PartnerRepository{q: tx}
}

// GetByID retrieves a partner by ID
func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*models.Partner, error) {
	query := `
		SELECT id, balance, version, created_at, updated_at
		FROM partners
		WHERE id = $1
	`

	var partner models.Partner
	err := r.q.QueryRow(ctx, query, id).Scan(
		&partner.ID,
		&partner.Balance,
		&partner.Version,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get partner %d", id)
	}

	return &partner, nil
}

// Create creates a new partner with a zero balance
func (r *PartnerRepository) Create(ctx context.Context) (*models.Partner, error) {
	query := `
		INSERT INTO partners (balance)
		VALUES (0)
		RETURNING id, balance, version, created_at, updated_at
	`

	var partner models.Partner
	err := r.q.QueryRow(ctx, query).Scan(
		&partner.ID,
		&partner.Balance,
		&partner.Version,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(err, "failed to create partner")
	}

	return &partner, nil
}

// AddBalance applies a signed delta to the partner's balance in a single relative update and
// returns the resulting balance and row version. The update also takes the partner's row lock
// for the remainder of the surrounding transaction.
func (r *PartnerRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, int64, error) {
	query := `
		UPDATE partners
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance, version
	`

	var (
		balance decimal.Decimal
		version int64
	)
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance, &version)

	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, 0, fmt.Errorf("partner %d: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, 0, wrapError(err, "failed to add balance for partner %d", id)
	}

	return balance, version, nil
}
