package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vadiminshakov/walletbalance/internal/services/pricer"
)

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
		if c.Store.MaxConns < 1 {
			return errors.New("store.max_conns must be >= 1")
		}
		if c.Store.MinConns < 0 {
			return errors.New("store.min_conns must be >= 0")
		}
		if c.Store.MinConns > c.Store.MaxConns {
			return fmt.Errorf("store.min_conns (%d) cannot exceed max_conns (%d)", c.Store.MinConns, c.Store.MaxConns)
		}
	case DriverWAL:
		if c.Store.WALDir == "" {
			return errors.New("store.wal_dir is required for the wal driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver must be one of postgres, wal, memory, got %q", c.Store.Driver)
	}

	switch c.Price.Source {
	case pricer.SourceCoinbase, pricer.SourceBinance, pricer.SourceBybit:
	default:
		return fmt.Errorf("price.source must be one of coinbase, binance, bybit, got %q", c.Price.Source)
	}
	if c.Price.RedisAddr != "" && c.Price.CacheTTL < time.Second {
		return errors.New("price.cache_ttl must be >= 1s when redis_addr is set")
	}
	if c.Price.RedisDB < 0 {
		return errors.New("price.redis_db must be >= 0")
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must be >= 0")
	}

	if c.Scanner.GapLimit < 1 {
		return errors.New("scanner.gap_limit must be >= 1")
	}
	if c.Scanner.RequestDelay < 0 {
		return errors.New("scanner.request_delay must be >= 0")
	}
	if c.Scanner.MaxAddresses < 1 {
		return errors.New("scanner.max_addresses must be >= 1")
	}

	if len(c.Aggregator.WalletNames) == 0 {
		return errors.New("aggregator.wallet_names must not be empty")
	}
	for i, name := range c.Aggregator.WalletNames {
		if name == "" {
			return fmt.Errorf("aggregator.wallet_names[%d] is empty", i)
		}
	}
	// buckets are floored with Truncate, so only sizes dividing an hour stay aligned to it
	size := c.Aggregator.BucketSize
	if size < time.Minute || size%time.Minute != 0 || time.Hour%size != 0 {
		return fmt.Errorf("aggregator.bucket_size must be whole minutes dividing an hour, got %s", size)
	}
	if c.Aggregator.BucketLimit < 1 {
		return errors.New("aggregator.bucket_limit must be >= 1")
	}

	return nil
}
