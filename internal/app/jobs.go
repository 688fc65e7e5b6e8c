package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/config"
	"github.com/vadiminshakov/walletbalance/internal/metrics"
	"github.com/vadiminshakov/walletbalance/internal/services/aggregator"
	"github.com/vadiminshakov/walletbalance/internal/services/fetcher"
	"github.com/vadiminshakov/walletbalance/internal/services/hdwallet"
	"github.com/vadiminshakov/walletbalance/internal/services/scanner"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

// Job names, also used as Pushgateway groupings.
const (
	JobAddressScanner = "btc-balance"
	JobAddressFetcher = "eth-balance"
	JobAggregator     = "total-balance"
)

type jobFunc func(ctx context.Context, store storage.Repository, m *metrics.Metrics, logger *zap.Logger) error

// runJob opens the store, runs fn with a run-scoped logger and records the outcome.
func runJob(ctx context.Context, cfg *config.Config, logger *zap.Logger, job string, fn jobFunc) (err error) {
	logger = logger.With(zap.String("job", job), zap.String("run_id", uuid.NewString()))
	m := metrics.New()
	started := time.Now()

	logger.Info("job started")

	defer func() {
		m.ObserveRun(job, time.Since(started).Seconds(), err)
		if pushErr := m.Push(ctx, cfg.Metrics.PushgatewayURL, job); pushErr != nil {
			logger.Warn("failed to push metrics", zap.Error(pushErr))
		}
	}()

	store, err := NewStore(ctx, cfg.Store, logger)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("failed to close store", zap.Error(closeErr))
		}
	}()

	if err = fn(ctx, store, m, logger); err != nil {
		return err
	}

	logger.Info("job finished", zap.Duration("elapsed", time.Since(started)))
	return nil
}

// RunAddressScanner scans the configured xpub and stores the wallet's BTC balance.
func RunAddressScanner(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	return runJob(ctx, cfg, logger, JobAddressScanner, func(ctx context.Context, store storage.Repository, m *metrics.Metrics, logger *zap.Logger) error {
		deriver, err := hdwallet.NewDeriver(cfg.Scanner.XPub, cfg.Scanner.PathTemplate)
		if err != nil {
			return err
		}

		p, closePricer, err := NewPricer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closePricer()

		s, err := scanner.NewScanner(scanner.Config{
			WalletName:   cfg.Scanner.WalletName,
			XPub:         cfg.Scanner.XPub,
			Fiat:         cfg.Price.Fiat,
			GapLimit:     cfg.Scanner.GapLimit,
			RequestDelay: cfg.Scanner.RequestDelay,
			MaxAddresses: cfg.Scanner.MaxAddresses,
		}, deriver, newBlockchainClient(cfg), p, store, logger, scanner.WithLookupHook(m.AddressesScanned.Inc))
		if err != nil {
			return err
		}

		_, err = s.Run(ctx)
		return err
	})
}

// RunAddressFetcher stores the ETH balance of the configured address.
func RunAddressFetcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	return runJob(ctx, cfg, logger, JobAddressFetcher, func(ctx context.Context, store storage.Repository, _ *metrics.Metrics, logger *zap.Logger) error {
		p, closePricer, err := NewPricer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closePricer()

		f, err := fetcher.NewFetcher(fetcher.Config{
			WalletName: cfg.Fetcher.WalletName,
			Address:    cfg.Fetcher.Address,
			Fiat:       cfg.Price.Fiat,
		}, newBlockchainClient(cfg), p, store, logger)
		if err != nil {
			return err
		}

		_, err = f.Run(ctx)
		return err
	})
}

// RunAggregator fills missing bucket totals.
func RunAggregator(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	return runJob(ctx, cfg, logger, JobAggregator, func(ctx context.Context, store storage.Repository, m *metrics.Metrics, logger *zap.Logger) error {
		agg := aggregator.NewAggregator(aggregator.Config{
			WalletNames: cfg.Aggregator.WalletNames,
			BucketSize:  cfg.Aggregator.BucketSize,
			BucketLimit: cfg.Aggregator.BucketLimit,
		}, store, logger, aggregator.WithBucketHook(func(written bool) {
			m.BucketsVisited.Inc()
			if written {
				m.BucketsWritten.Inc()
			}
		}))

		_, err := agg.Run(ctx)
		return err
	})
}
