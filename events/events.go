package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChanged     EventType = "balance_changed"
	EventTypeDailyRollupUpdated EventType = "daily_rollup_updated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangedEvent is emitted once per committed append
type BalanceChangedEvent struct {
	PartnerID     int64
	TransactionID int64
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	OccurredAt    time.Time
}

func (e BalanceChangedEvent) Type() EventType {
	return EventTypeBalanceChanged
}

// DailyRollupUpdatedEvent is emitted when an append for a past day folded into that day's rollup
type DailyRollupUpdatedEvent struct {
	PartnerID int64
	Day       time.Time
	Delta     decimal.Decimal
	Total     decimal.Decimal
}

func (e DailyRollupUpdatedEvent) Type() EventType {
	return EventTypeDailyRollupUpdated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run on their own goroutines
// and a panicking handler is logged, never propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the unit commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush hands the pending events to the underlying bus; called after a successful commit.
// Events are emitted on a background context since the request context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional bus")

	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops the pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
