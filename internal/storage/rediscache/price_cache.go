// Package rediscache caches spot prices in Redis between job runs.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

const keyPrefix = "walletbalance:price:"

// PriceCache stores the last fetched price per pair with a TTL.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPriceCache connects to Redis and checks the connection.
func NewPriceCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*PriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return &PriceCache{client: client, ttl: ttl}, nil
}

func priceKey(source string, pair domain.Pair) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, source, pair.String())
}

// Get returns the cached price; ok is false on a miss.
func (c *PriceCache) Get(ctx context.Context, source string, pair domain.Pair) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, priceKey(source, pair)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, errors.Wrap(err, "get cached price")
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, errors.Wrapf(err, "decode cached price %q", val)
	}

	return price, true, nil
}

// Set stores the price for the configured TTL.
func (c *PriceCache) Set(ctx context.Context, source string, pair domain.Pair, price decimal.Decimal) error {
	if err := c.client.Set(ctx, priceKey(source, pair), price.String(), c.ttl).Err(); err != nil {
		return errors.Wrap(err, "set cached price")
	}
	return nil
}

// Close closes the Redis client.
func (c *PriceCache) Close() error {
	return c.client.Close()
}
