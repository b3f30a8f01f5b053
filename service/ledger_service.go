package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"partnerledger/config"
	"partnerledger/metrics"
	"partnerledger/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// MaxTransactionsPageLimit caps transaction listings
const MaxTransactionsPageLimit = 1000

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
	loc        *time.Location
	pageLimit  int
	cache      BalanceCache
	now        func() time.Time
}

// LedgerOption customizes a ledger service
type LedgerOption func(*ledgerService)

// WithClock replaces the wall clock used to decide whether an append falls on a past day
func WithClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service. A nil cache disables balance caching.
func NewLedgerService(uowFactory UnitOfWorkFactory, cfg *config.Config, cache BalanceCache, opts ...LedgerOption) LedgerService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	pageLimit := cfg.TransactionsPageLimit
	if pageLimit <= 0 {
		pageLimit = 100
	}
	if cache == nil {
		cache = noopBalanceCache{}
	}

	s := &ledgerService{
		uowFactory: uowFactory,
		loc:        loc,
		pageLimit:  pageLimit,
		cache:      cache,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records amount for the partner. The balance increment, the transaction insert and, for
// past days, the rollup increment commit together or not at all.
func (s *ledgerService) Append(ctx context.Context, partnerID int64, amount decimal.Decimal, timestamp *time.Time) (_ *models.Transaction, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpAppend, operationStatus(err), started) }()

	if err := ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("amount %s does not fit the ledger: %w", amount.String(), err)
	}

	now := s.now()
	occurredAt := now
	if timestamp != nil {
		occurredAt = *timestamp
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// The relative update comes first: it fails fast for unknown partners and takes the row lock
	newBalance, version, err := uow.PartnerRepository().AddBalance(ctx, partnerID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance of partner %d: %w", partnerID, err)
	}

	tx := &models.Transaction{
		PartnerID:  partnerID,
		Amount:     amount,
		OccurredAt: occurredAt,
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction for partner %d: %w", partnerID, err)
	}

	rolledUp := IsPastDay(occurredAt, now, s.loc)
	if rolledUp {
		if err := s.accumulateRollup(ctx, uow, partnerID, amount, occurredAt); err != nil {
			return nil, err
		}
	}

	RecordBalanceChange(uow, tx, newBalance)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Set(context.WithoutCancel(ctx), partnerID, newBalance, version)
	if rolledUp {
		metrics.RollupAccumulated()
	}

	log.WithFields(log.Fields{
		"partner_id":     partnerID,
		"transaction_id": tx.ID,
		"amount":         amount.String(),
		"occurred_at":    occurredAt.Format(time.RFC3339Nano),
		"rolled_up":      rolledUp,
		"new_balance":    newBalance.String(),
		"version":        version,
	}).Info("Appended transaction")

	return tx, nil
}

// CurrentBalance returns the partner's cached balance
func (s *ledgerService) CurrentBalance(ctx context.Context, partnerID int64) (_ decimal.Decimal, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpCurrentBalance, operationStatus(err), started) }()

	if balance, ok := s.cache.Get(ctx, partnerID); ok {
		return balance, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	partner, err := s.getPartner(ctx, uow, partnerID)
	if err != nil {
		return decimal.Zero, err
	}

	// A concurrent append may have committed since the read; its newer version wins in the cache
	s.cache.Set(ctx, partnerID, partner.Balance, partner.Version)
	return partner.Balance, nil
}

// BalanceAsOf returns the balance at asOf: the raw transactions of asOf's day up to asOf, plus the
// rollups of every earlier day.
func (s *ledgerService) BalanceAsOf(ctx context.Context, partnerID int64, asOf time.Time) (_ decimal.Decimal, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpBalanceAsOf, operationStatus(err), started) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.getPartner(ctx, uow, partnerID); err != nil {
		return decimal.Zero, err
	}

	bucketStart := StartOfDay(asOf, s.loc)

	todaySum, err := uow.TransactionRepository().SumBetween(ctx, partnerID, bucketStart, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions of partner %d: %w", partnerID, err)
	}

	priorSum, err := uow.DailyRollupRepository().SumBefore(ctx, partnerID, bucketStart)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum rollups of partner %d: %w", partnerID, err)
	}

	log.WithFields(log.Fields{
		"partner_id": partnerID,
		"as_of":      asOf.Format(time.RFC3339Nano),
		"today_sum":  todaySum.String(),
		"prior_sum":  priorSum.String(),
	}).Debug("Reconstructed balance")

	return todaySum.Add(priorSum), nil
}

// BalanceAsOfFullScan sums every transaction up to asOf without touching rollups
func (s *ledgerService) BalanceAsOfFullScan(ctx context.Context, partnerID int64, asOf time.Time) (_ decimal.Decimal, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpBalanceAsOfFullScan, operationStatus(err), started) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.getPartner(ctx, uow, partnerID); err != nil {
		return decimal.Zero, err
	}

	sum, err := uow.TransactionRepository().SumUpTo(ctx, partnerID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions of partner %d: %w", partnerID, err)
	}

	return sum, nil
}

// Transactions lists the partner's transactions, newest first. A non-positive limit uses the
// configured page size.
func (s *ledgerService) Transactions(ctx context.Context, partnerID int64, limit int) (_ []*models.Transaction, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpTransactions, operationStatus(err), started) }()

	if limit <= 0 {
		limit = s.pageLimit
	}
	if limit > MaxTransactionsPageLimit {
		limit = MaxTransactionsPageLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.getPartner(ctx, uow, partnerID); err != nil {
		return nil, err
	}

	transactions, err := uow.TransactionRepository().GetByPartner(ctx, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of partner %d: %w", partnerID, err)
	}

	return transactions, nil
}

// Rollups lists the partner's daily rollups, oldest day first
func (s *ledgerService) Rollups(ctx context.Context, partnerID int64) (_ []*models.DailyRollup, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpRollups, operationStatus(err), started) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.getPartner(ctx, uow, partnerID); err != nil {
		return nil, err
	}

	rollups, err := uow.DailyRollupRepository().GetByPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rollups of partner %d: %w", partnerID, err)
	}

	return rollups, nil
}

// CreatePartner registers a partner with a zero balance
func (s *ledgerService) CreatePartner(ctx context.Context) (_ *models.Partner, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation(metrics.OpCreatePartner, operationStatus(err), started) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	partner, err := uow.PartnerRepository().Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("partner_id", partner.ID).Info("Created partner")
	return partner, nil
}

// getPartner resolves a partner or fails with ErrNotFound
func (s *ledgerService) getPartner(ctx context.Context, uow UnitOfWork, partnerID int64) (*models.Partner, error) {
	partner, err := uow.PartnerRepository().GetByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner %d: %w", partnerID, err)
	}
	if partner == nil {
		return nil, fmt.Errorf("partner %d: %w", partnerID, ErrNotFound)
	}
	return partner, nil
}

// operationStatus maps an operation error onto a metrics label
func operationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrBalanceOutOfRange):
		return "out_of_range"
	default:
		return "error"
	}
}

type noopBalanceCache struct{}

func (noopBalanceCache) Get(context.Context, int64) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

func (noopBalanceCache) Set(context.Context, int64, decimal.Decimal, int64) {}
