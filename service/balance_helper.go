package service

import (
	"partnerledger/events"
	"partnerledger/models"

	"github.com/shopspring/decimal"
)

// maxIntegerDigits is the integer capacity of NUMERIC(32,4)
const maxIntegerDigits = 28

// amountScale is the number of fractional digits the ledger stores
const amountScale = 4

var amountLimit = decimal.New(1, maxIntegerDigits)

// ValidateAmount checks that amount fits the ledger's fixed-point column without rounding
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(amountScale)) {
		return ErrInvalidAmount
	}
	if amount.Abs().GreaterThanOrEqual(amountLimit) {
		return ErrInvalidAmount
	}
	return nil
}

// RecordBalanceChange queues the balance change event for the unit of work.
// It is delivered only if the unit commits.
func RecordBalanceChange(uow UnitOfWork, tx *models.Transaction, newBalance decimal.Decimal) {
	uow.EventBus().Publish(events.BalanceChangedEvent{
		PartnerID:     tx.PartnerID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		NewBalance:    newBalance,
		OccurredAt:    tx.OccurredAt,
	})
}
