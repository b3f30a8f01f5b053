package service

import (
	"context"
	"fmt"
	"time"

	"partnerledger/events"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// accumulateRollup folds one transaction into its day's rollup. It must only be called from the
// append path, inside the same unit of work as the transaction insert, and only for past days:
// each call is an increment, so calling it twice for one transaction double-counts.
func (s *ledgerService) accumulateRollup(ctx context.Context, uow UnitOfWork, partnerID int64, amount decimal.Decimal, timestamp time.Time) error {
	bucketStart := StartOfDay(timestamp, s.loc)

	rollup, err := uow.DailyRollupRepository().Accumulate(ctx, partnerID, bucketStart, amount)
	if err != nil {
		return fmt.Errorf("failed to accumulate rollup for partner %d on %s: %w",
			partnerID, bucketStart.Format("2006-01-02"), err)
	}

	uow.EventBus().Publish(events.DailyRollupUpdatedEvent{
		PartnerID: partnerID,
		Day:       rollup.Day,
		Delta:     amount,
		Total:     rollup.Amount,
	})

	log.WithFields(log.Fields{
		"partner_id": partnerID,
		"day":        bucketStart.Format("2006-01-02"),
		"delta":      amount.String(),
		"total":      rollup.Amount.String(),
	}).Debug("Accumulated daily rollup")

	return nil
}
