package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partner represents an account holder whose balance is kept by the ledger
type Partner struct {
	ID        int64           `db:"id"`
	Balance   decimal.Decimal `db:"balance"` // Sum of all of the partner's transactions
	Version   int64           `db:"version"` // Incremented by every balance change
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
