package service

import (
	"context"
	"time"

	"partnerledger/events"
	"partnerledger/models"

	"github.com/shopspring/decimal"
)

// PartnerRepository defines the interface for partner (balance owner) data access
type PartnerRepository interface {
	// GetByID retrieves a partner, returning nil when it does not exist
	GetByID(ctx context.Context, id int64) (*models.Partner, error)

	// Create creates a new partner with a zero balance
	Create(ctx context.Context) (*models.Partner, error)

	// AddBalance applies a signed delta to the cached balance in storage and returns the new balance
	// together with the partner's new version. Returns ErrNotFound when the partner does not exist.
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, int64, error)
}

// TransactionRepository defines the interface for the append-only transaction log
type TransactionRepository interface {
	// Create appends a transaction, filling in its ID and CreatedAt
	Create(ctx context.Context, tx *models.Transaction) error

	// SumBetween sums the partner's amounts with occurred_at in [from, to]
	SumBetween(ctx context.Context, partnerID int64, from, to time.Time) (decimal.Decimal, error)

	// SumUpTo sums the partner's amounts with occurred_at <= asOf
	SumUpTo(ctx context.Context, partnerID int64, asOf time.Time) (decimal.Decimal, error)

	// GetByPartner returns the partner's transactions, newest first
	GetByPartner(ctx context.Context, partnerID int64, limit int) ([]*models.Transaction, error)
}

// DailyRollupRepository defines the interface for per-day transaction aggregates
type DailyRollupRepository interface {
	// Accumulate adds amount to the rollup for (partnerID, day), creating it if needed.
	// Safe under concurrent writers for the same key.
	Accumulate(ctx context.Context, partnerID int64, day time.Time, amount decimal.Decimal) (*models.DailyRollup, error)

	// SumBefore sums the partner's rollups with day < before
	SumBefore(ctx context.Context, partnerID int64, before time.Time) (decimal.Decimal, error)

	// GetByPartner returns all rollups of a partner ordered by day
	GetByPartner(ctx context.Context, partnerID int64) ([]*models.DailyRollup, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// BalanceCache caches current balances outside the database. Set must ignore a balance whose
// version is not newer than the cached one.
type BalanceCache interface {
	Get(ctx context.Context, partnerID int64) (decimal.Decimal, bool)
	Set(ctx context.Context, partnerID int64, balance decimal.Decimal, version int64)
}

// LedgerService defines the ledger engine operations
type LedgerService interface {
	// Append records a signed amount for a partner. A nil timestamp means now.
	Append(ctx context.Context, partnerID int64, amount decimal.Decimal, timestamp *time.Time) (*models.Transaction, error)

	// CurrentBalance returns the partner's cached running balance
	CurrentBalance(ctx context.Context, partnerID int64) (decimal.Decimal, error)

	// BalanceAsOf reconstructs the balance at an instant from the day's raw transactions plus prior rollups
	BalanceAsOf(ctx context.Context, partnerID int64, asOf time.Time) (decimal.Decimal, error)

	// BalanceAsOfFullScan sums every transaction up to asOf; the reference result for BalanceAsOf
	BalanceAsOfFullScan(ctx context.Context, partnerID int64, asOf time.Time) (decimal.Decimal, error)

	// Transactions lists the partner's raw log, newest first
	Transactions(ctx context.Context, partnerID int64, limit int) ([]*models.Transaction, error)

	// Rollups lists the partner's daily rollups, oldest day first
	Rollups(ctx context.Context, partnerID int64) ([]*models.DailyRollup, error)

	// CreatePartner registers a new partner with a zero balance
	CreatePartner(ctx context.Context) (*models.Partner, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PartnerRepository() PartnerRepository
	TransactionRepository() TransactionRepository
	DailyRollupRepository() DailyRollupRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
