// Package cache keeps current partner balances in Redis in front of the ledger store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"partnerledger/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const keyNamespace = "ledger:balance"

// Entries are hashes {version, balance}. A write only lands when its version is newer than the
// stored one, so a slow reader filling the cache cannot overwrite a committed append.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'balance', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// BalanceCache is a read-through, write-through cache of current balances. Redis failures
// degrade to cache misses; the database stays authoritative.
type BalanceCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewBalanceCache wraps an existing Redis client
func NewBalanceCache(client redis.UniversalClient, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

// NewBalanceCacheFromURL connects to the Redis server at redisURL and verifies it answers
func NewBalanceCacheFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*BalanceCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.WithFields(log.Fields{
		"addr": opts.Addr,
		"db":   opts.DB,
		"ttl":  ttl,
	}).Info("Connected to Redis balance cache")

	return NewBalanceCache(client, ttl), nil
}

func balanceKey(partnerID int64) string {
	return keyNamespace + ":" + strconv.FormatInt(partnerID, 10)
}

// Get returns the cached balance and whether there was a usable entry
func (c *BalanceCache) Get(ctx context.Context, partnerID int64) (decimal.Decimal, bool) {
	raw, err := c.client.HGet(ctx, balanceKey(partnerID), "balance").Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookup(false)
		return decimal.Zero, false
	}
	if err != nil {
		log.WithError(err).WithField("partner_id", partnerID).Warn("Balance cache read failed")
		metrics.CacheLookup(false)
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		log.WithError(err).WithField("partner_id", partnerID).Warn("Discarding malformed cached balance")
		c.Invalidate(ctx, partnerID)
		metrics.CacheLookup(false)
		return decimal.Zero, false
	}

	metrics.CacheLookup(true)
	return balance, true
}

// Set stores the balance with the configured TTL unless the cache already holds the same or a
// newer version
func (c *BalanceCache) Set(ctx context.Context, partnerID int64, balance decimal.Decimal, version int64) {
	stored, err := setIfNewer.Run(ctx, c.client, []string{balanceKey(partnerID)},
		version, balance.String(), c.ttl.Milliseconds()).Int()
	if err != nil {
		log.WithError(err).WithField("partner_id", partnerID).Warn("Balance cache write failed")
		return
	}
	if stored == 0 {
		log.WithFields(log.Fields{
			"partner_id": partnerID,
			"version":    version,
		}).Debug("Skipped stale balance cache write")
	}
}

// Invalidate drops the cached balance
func (c *BalanceCache) Invalidate(ctx context.Context, partnerID int64) {
	if err := c.client.Del(ctx, balanceKey(partnerID)).Err(); err != nil {
		// The entry still expires after the TTL
		log.WithError(err).WithField("partner_id", partnerID).Warn("Balance cache invalidation failed")
	}
}

// Close releases the Redis connection
func (c *BalanceCache) Close() error {
	return c.client.Close()
}
