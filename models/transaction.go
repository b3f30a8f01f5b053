package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable signed amount appended to a partner's log
type Transaction struct {
	ID         int64           `db:"id" json:"id"`
	PartnerID  int64           `db:"partner_id" json:"partner_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	OccurredAt time.Time       `db:"occurred_at" json:"date"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
