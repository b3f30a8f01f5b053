package service

import (
	"context"
	"time"

	"partnerledger/events"
	"partnerledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPartnerRepository is a mock implementation of PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) GetByID(ctx context.Context, id int64) (*models.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Create(ctx context.Context) (*models.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Partner), args.Error(1)
}

func (m *MockPartnerRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) SumBetween(ctx context.Context, partnerID int64, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, partnerID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumUpTo(ctx context.Context, partnerID int64, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, partnerID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) GetByPartner(ctx context.Context, partnerID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, partnerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockDailyRollupRepository is a mock implementation of DailyRollupRepository
type MockDailyRollupRepository struct {
	mock.Mock
}

func (m *MockDailyRollupRepository) Accumulate(ctx context.Context, partnerID int64, day time.Time, amount decimal.Decimal) (*models.DailyRollup, error) {
	args := m.Called(ctx, partnerID, day, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyRollup), args.Error(1)
}

func (m *MockDailyRollupRepository) SumBefore(ctx context.Context, partnerID int64, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, partnerID, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDailyRollupRepository) GetByPartner(ctx context.Context, partnerID int64) ([]*models.DailyRollup, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DailyRollup), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockBalanceCache is a mock implementation of BalanceCache
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, partnerID int64) (decimal.Decimal, bool) {
	args := m.Called(ctx, partnerID)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func (m *MockBalanceCache) Set(ctx context.Context, partnerID int64, balance decimal.Decimal, version int64) {
	m.Called(ctx, partnerID, balance, version)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	partnerRepo     PartnerRepository
	transactionRepo TransactionRepository
	rollupRepo      DailyRollupRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories handed out by the unit of work
func (m *MockUnitOfWork) SetRepositories(partnerRepo PartnerRepository, transactionRepo TransactionRepository, rollupRepo DailyRollupRepository, eventBus EventPublisher) {
	m.partnerRepo = partnerRepo
	m.transactionRepo = transactionRepo
	m.rollupRepo = rollupRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PartnerRepository() PartnerRepository {
	return m.partnerRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) DailyRollupRepository() DailyRollupRepository {
	return m.rollupRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
