package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRollup accumulates the transactions of one partner for one past calendar day.
// Day is the start-of-day instant in the ledger's reference zone.
type DailyRollup struct {
	ID        int64           `db:"id" json:"id"`
	PartnerID int64           `db:"partner_id" json:"partner_id"`
	Day       time.Time       `db:"day" json:"day"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
