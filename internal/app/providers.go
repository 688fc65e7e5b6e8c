// Package app wires configuration, storage, price oracles and metrics into the balance jobs.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/config"
	"github.com/vadiminshakov/walletbalance/internal/clients"
	"github.com/vadiminshakov/walletbalance/internal/services/pricer"
	"github.com/vadiminshakov/walletbalance/internal/storage"
	"github.com/vadiminshakov/walletbalance/internal/storage/memory"
	"github.com/vadiminshakov/walletbalance/internal/storage/postgres"
	"github.com/vadiminshakov/walletbalance/internal/storage/rediscache"
	"github.com/vadiminshakov/walletbalance/internal/storage/walstore"
)

// NewStore opens the record store selected by cfg.Driver.
// This is the only place that knows the concrete storage implementations.
func NewStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (storage.Repository, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.DSN, postgres.PoolConfig{
			MinConns: int(cfg.MinConns),
			MaxConns: int(cfg.MaxConns),
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Debug("postgres store ready")
		return postgres.NewRepository(pool), nil
	case config.DriverWAL:
		store, err := walstore.NewWALStore(cfg.WALDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("wal store ready", zap.String("dir", cfg.WALDir))
		return store, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store, records are lost on exit")
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// NewPricer builds the spot price source named by cfg.Price.Source, wrapped in a
// Redis cache when an address is configured. The returned closer releases the cache.
func NewPricer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (pricer.Pricer, func() error, error) {
	var p pricer.Pricer

	switch cfg.Price.Source {
	case pricer.SourceCoinbase:
		p = pricer.NewCoinbasePricer(clients.NewCoinbaseClient(cfg.Price.CoinbaseURL, cfg.HTTP.Timeout))
	case pricer.SourceBinance:
		p = pricer.NewBinancePricer(clients.NewBinanceClient())
	case pricer.SourceBybit:
		p = pricer.NewBybitPricer(clients.NewBybitClient())
	default:
		return nil, nil, fmt.Errorf("unsupported price source: %s", cfg.Price.Source)
	}

	noop := func() error { return nil }
	if cfg.Price.RedisAddr == "" {
		return p, noop, nil
	}

	cache, err := rediscache.NewPriceCache(ctx, cfg.Price.RedisAddr, cfg.Price.RedisPassword, cfg.Price.RedisDB, cfg.Price.CacheTTL)
	if err != nil {
		return nil, nil, err
	}

	return pricer.NewCachedPricer(p, cache, cfg.Price.Source, logger), cache.Close, nil
}

func newBlockchainClient(cfg *config.Config) *clients.BlockchainClient {
	var opts []clients.BlockchainOption
	if cfg.Scanner.BalanceURL != "" {
		opts = append(opts, clients.WithAddressBalanceURL(cfg.Scanner.BalanceURL))
	}
	if cfg.Fetcher.BalanceURL != "" {
		opts = append(opts, clients.WithAccountBalanceURL(cfg.Fetcher.BalanceURL))
	}

	return clients.NewBlockchainClient(cfg.HTTP.Timeout, opts...)
}
