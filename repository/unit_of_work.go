package repository

import (
	"context"
	"errors"
	"fmt"

	"partnerledger/database"
	"partnerledger/events"
	"partnerledger/service"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	partnerRepo      service.PartnerRepository
	transactionRepo  service.TransactionRepository
	rollupRepo       service.DailyRollupRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. eventBus may be nil, in which case
// committed events are dropped.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return wrapError(err, "failed to begin transaction")
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.partnerRepo = newPartnerRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.rollupRepo = newDailyRollupRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	if err != nil {
		u.transactionalBus.Discard()
		return wrapError(err, "failed to commit transaction")
	}

	// Flush pending events after successful commit
	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		log.WithError(err).Warn("Failed to flush events after commit")
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	// The caller's context may already be cancelled; the rollback must still reach the server
	err := u.tx.Rollback(context.WithoutCancel(u.ctx))
	u.tx = nil

	// Discard pending events on rollback
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// PartnerRepository returns the partner repository for this unit of work
func (u *unitOfWork) PartnerRepository() service.PartnerRepository {
	if u.partnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.partnerRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// DailyRollupRepository returns the daily rollup repository for this unit of work
func (u *unitOfWork) DailyRollupRepository() service.DailyRollupRepository {
	if u.rollupRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rollupRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
