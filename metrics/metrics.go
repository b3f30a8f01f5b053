// Package metrics holds the Prometheus instruments of the ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// Operation labels
const (
	OpAppend              = "append"
	OpCurrentBalance      = "current_balance"
	OpBalanceAsOf         = "balance_as_of"
	OpBalanceAsOfFullScan = "balance_as_of_full_scan"
	OpTransactions        = "transactions"
	OpRollups             = "rollups"
	OpCreatePartner       = "create_partner"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of ledger operations by outcome",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	rollupAccumulationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollup_accumulations_total",
			Help:      "Total number of appends folded into a past day's rollup",
		},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_lookups_total",
			Help:      "Balance cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveOperation records the outcome and latency of one ledger operation
func ObserveOperation(operation, status string, started time.Time) {
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RollupAccumulated counts one rollup increment
func RollupAccumulated() {
	rollupAccumulationsTotal.Inc()
}

// CacheLookup counts one balance cache lookup
func CacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}
