// Package aggregator folds per-wallet balance observations into fiat totals on
// fixed time buckets, filling every bucket between the oldest observation and now.
package aggregator

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

const DefaultBucketLimit = 100

var (
	// ErrNoBalances is returned when the store holds no observation at all.
	ErrNoBalances = errors.New("no wallet balances stored")
	// ErrMixedFiat is returned when one bucket combines balances priced in different currencies.
	ErrMixedFiat = errors.New("bucket mixes fiat currencies")
)

type store interface {
	storage.BalanceStore
	storage.TotalStore
}

// Config controls the bucket walk.
type Config struct {
	// WalletNames are the wallets that fall back to their latest earlier balance when a bucket lacks them.
	WalletNames []string
	BucketSize  time.Duration
	// BucketLimit caps the observations read per bucket.
	BucketLimit int
}

// Report summarises one aggregation run.
type Report struct {
	Visited int
	Written int
}

// Aggregator computes missing bucket totals.
type Aggregator struct {
	cfg      Config
	store    store
	logger   *zap.Logger
	now      func() time.Time
	onBucket func(written bool)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithBucketHook registers a callback invoked for every visited bucket.
func WithBucketHook(fn func(written bool)) Option {
	return func(a *Aggregator) {
		a.onBucket = fn
	}
}

func NewAggregator(cfg Config, st store, logger *zap.Logger, opts ...Option) *Aggregator {
	if cfg.BucketSize <= 0 {
		cfg.BucketSize = domain.DefaultBucketSize
	}
	if cfg.BucketLimit <= 0 {
		cfg.BucketLimit = DefaultBucketLimit
	}

	a := &Aggregator{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		now:      time.Now,
		onBucket: func(bool) {},
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run walks buckets backwards from the current one down to the bucket of the
// oldest observation (exclusive) and writes a total for every bucket that lacks one.
func (a *Aggregator) Run(ctx context.Context) (Report, error) {
	oldest, err := a.store.OldestBalance(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Report{}, ErrNoBalances
		}
		return Report{}, errors.Wrap(err, "find oldest balance")
	}

	lower := domain.FloorToBucket(oldest.Timestamp, a.cfg.BucketSize)
	var report Report

	for t := domain.FloorToBucket(a.now(), a.cfg.BucketSize); t.After(lower); t = t.Add(-a.cfg.BucketSize) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Visited++
		written, err := a.fillBucket(ctx, t)
		if err != nil {
			return report, errors.Wrapf(err, "bucket %s", t.Format(time.RFC3339))
		}
		if written {
			report.Written++
		}
		a.onBucket(written)
	}

	a.logger.Info("aggregation finished",
		zap.Time("from", lower),
		zap.Int("visited", report.Visited),
		zap.Int("written", report.Written))

	return report, nil
}

func (a *Aggregator) fillBucket(ctx context.Context, t time.Time) (bool, error) {
	exists, err := a.store.TotalExists(ctx, t)
	if err != nil {
		return false, errors.Wrap(err, "check existing total")
	}
	if exists {
		return false, nil
	}

	prev := t.Add(-a.cfg.BucketSize)
	observations, err := a.store.BalancesInRange(ctx, prev, t, a.cfg.BucketLimit)
	if err != nil {
		return false, errors.Wrap(err, "list balances")
	}

	byWallet := make(map[string][]domain.WalletBalance)
	for _, o := range observations {
		byWallet[o.WalletName] = append(byWallet[o.WalletName], o)
	}

	for _, name := range a.cfg.WalletNames {
		if _, ok := byWallet[name]; ok {
			continue
		}
		latest, err := a.store.LatestBalanceAt(ctx, name, t)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, errors.Wrapf(err, "latest balance of %s", name)
		}
		byWallet[name] = []domain.WalletBalance{latest}
	}

	if len(byWallet) == 0 {
		a.logger.Debug("no balances for bucket", zap.Time("bucket", t))
		return false, nil
	}

	total, err := sumWalletMeans(byWallet)
	if err != nil {
		return false, err
	}
	total.Timestamp = t

	if err := a.store.InsertTotal(ctx, total); err != nil {
		return false, errors.Wrap(err, "insert total")
	}

	a.logger.Debug("bucket total saved",
		zap.Time("bucket", t),
		zap.Strings("wallets", total.FromWalletNames),
		zap.String("balance", total.BalanceInFiat.StringFixed(2)))

	return true, nil
}

// sumWalletMeans averages each wallet's fiat values and adds the averages up.
func sumWalletMeans(byWallet map[string][]domain.WalletBalance) (domain.TotalWalletBalances, error) {
	names := make([]string, 0, len(byWallet))
	for name := range byWallet {
		names = append(names, name)
	}
	sort.Strings(names)

	var fiat domain.Fiat
	sum := decimal.Zero

	for _, name := range names {
		values := make([]decimal.Decimal, 0, len(byWallet[name]))
		for _, o := range byWallet[name] {
			if fiat.Symbol == "" {
				fiat = o.Fiat()
			} else if o.FiatSymbol != fiat.Symbol {
				return domain.TotalWalletBalances{}, errors.Wrapf(ErrMixedFiat, "%s and %s", fiat.Symbol, o.FiatSymbol)
			}
			values = append(values, o.FiatValue())
		}
		sum = sum.Add(decimal.Avg(values[0], values[1:]...))
	}

	return domain.TotalWalletBalances{
		FromWalletNames: names,
		BalanceInFiat:   sum,
		FiatSymbol:      fiat.Symbol,
		FiatUnit:        fiat.Unit,
	}, nil
}
