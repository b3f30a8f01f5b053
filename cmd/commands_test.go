package cmd

import (
	"context"
	"flag"
	"testing"
	"time"

	"partnerledger/events"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_Names(t *testing.T) {
	var names []string
	for _, c := range Commands {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Synopsis())
		assert.NotEmpty(t, c.Usage())
	}

	assert.Equal(t, []string{"serve", "migrate", "create-partner"}, names)
}

func TestMigrateCmd_RequiresArgument(t *testing.T) {
	c := &migrateCmd{}
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(nil))

	status := c.Execute(context.Background(), fs)

	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestSubscribeAuditLog(t *testing.T) {
	bus := events.NewBus()
	subscribeAuditLog(bus)

	done := make(chan struct{})
	bus.Subscribe(events.EventTypeBalanceChanged, func(ctx context.Context, event events.Event) {
		close(done)
	})

	bus.Emit(context.Background(), events.BalanceChangedEvent{
		PartnerID:     1,
		TransactionID: 2,
		Amount:        decimal.RequireFromString("0.10"),
		NewBalance:    decimal.RequireFromString("0.10"),
		OccurredAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
