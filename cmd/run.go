package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"partnerledger/api"
	"partnerledger/cache"
	"partnerledger/config"
	"partnerledger/database"
	"partnerledger/events"
	"partnerledger/repository"
	"partnerledger/service"

	log "github.com/sirupsen/logrus"
)

// Run wires the ledger and serves HTTP until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting partner ledger...")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	var balanceCache service.BalanceCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewBalanceCacheFromURL(ctx, cfg.RedisURL, cfg.BalanceCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to connect to balance cache: %w", err)
		}
		defer redisCache.Close()
		balanceCache = redisCache
	} else {
		log.Info("REDIS_URL not set, balance cache disabled")
	}

	ledgerService := service.NewLedgerService(uowFactory, cfg, balanceCache)

	handler := api.NewLedgerHandler(ledgerService, db, cfg.Location)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler, cfg.RequestTimeout, cfg.CORSAllowedOrigins),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":     cfg.HTTPAddr,
			"timezone": cfg.Location.String(),
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down partner ledger...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	log.Info("Shutdown completed")
	return nil
}

// subscribeAuditLog writes every committed ledger change to the log
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChanged, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"partner_id":     e.PartnerID,
			"transaction_id": e.TransactionID,
			"amount":         e.Amount.String(),
			"new_balance":    e.NewBalance.String(),
			"occurred_at":    e.OccurredAt,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeDailyRollupUpdated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.DailyRollupUpdatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"partner_id": e.PartnerID,
			"day":        e.Day.Format("2006-01-02"),
			"delta":      e.Delta.String(),
			"total":      e.Total.String(),
		}).Info("Daily rollup updated")
	})
}
