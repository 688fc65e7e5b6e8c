// Package scanner sums the balance of an HD wallet by walking its receive addresses.
package scanner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

const (
	DefaultGapLimit     = 1
	DefaultRequestDelay = 10 * time.Second
	DefaultMaxAddresses = 1000
)

type addressDeriver interface {
	Address(index uint32) (string, error)
}

type balanceOracle interface {
	AddressBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

type priceService interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

type store interface {
	storage.CheckpointStore
	InsertBalance(ctx context.Context, balance domain.WalletBalance) error
}

// Config describes one xpub wallet.
type Config struct {
	WalletName string
	XPub       string
	Fiat       domain.Fiat
	// GapLimit is the number of consecutive empty addresses, after the first funded one, that ends a scan.
	GapLimit int
	// RequestDelay is the minimum spacing between two balance queries.
	RequestDelay time.Duration
	// MaxAddresses bounds the number of queries in one run.
	MaxAddresses int
}

// Result summarises one scan.
type Result struct {
	StartIndex   uint32
	NextIndex    uint32
	Scanned      int
	Funded       int
	TotalBalance decimal.Decimal
	Record       domain.WalletBalance
}

// Scanner walks derived addresses and persists the wallet's total balance.
type Scanner struct {
	cfg      Config
	deriver  addressDeriver
	oracle   balanceOracle
	pricer   priceService
	store    store
	limiter  *rate.Limiter
	logger   *zap.Logger
	now      func() time.Time
	onLookup func()
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock overrides the clock used for the record timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// WithLookupHook registers a callback invoked after every balance query.
func WithLookupHook(fn func()) Option {
	return func(s *Scanner) {
		s.onLookup = fn
	}
}

// NewScanner validates cfg and fills in defaults.
func NewScanner(cfg Config, deriver addressDeriver, oracle balanceOracle, pricer priceService,
	st store, logger *zap.Logger, opts ...Option) (*Scanner, error) {
	if cfg.WalletName == "" {
		return nil, errors.New("wallet name is required")
	}
	if cfg.XPub == "" {
		return nil, errors.New("xpub is required")
	}
	if cfg.GapLimit <= 0 {
		cfg.GapLimit = DefaultGapLimit
	}
	if cfg.RequestDelay < 0 {
		return nil, errors.New("request delay must not be negative")
	}
	if cfg.MaxAddresses <= 0 {
		cfg.MaxAddresses = DefaultMaxAddresses
	}
	if cfg.Fiat.Symbol == "" {
		cfg.Fiat = domain.Euro
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	s := &Scanner{
		cfg:      cfg,
		deriver:  deriver,
		oracle:   oracle,
		pricer:   pricer,
		store:    st,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
		now:      time.Now,
		onLookup: func() {},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run scans from the stored checkpoint and inserts one WalletBalance with the accumulated total.
// Any oracle or store failure aborts the run before the balance is written.
func (s *Scanner) Run(ctx context.Context) (Result, error) {
	start, err := s.store.Checkpoint(ctx, s.cfg.XPub)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return Result{}, errors.Wrap(err, "read address checkpoint")
		}
		start = 0
	}

	res := Result{StartIndex: start, TotalBalance: decimal.Zero}
	index := start
	found := false
	empty := 0

	s.logger.Info("scanning addresses", zap.Uint32("start_index", start), zap.Int("gap_limit", s.cfg.GapLimit))

	for empty < s.cfg.GapLimit {
		if res.Scanned >= s.cfg.MaxAddresses {
			s.logger.Warn("address limit reached, stopping scan",
				zap.Int("max_addresses", s.cfg.MaxAddresses), zap.Bool("found_funded", found))
			break
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return Result{}, errors.Wrap(err, "wait for rate limiter")
		}

		address, err := s.deriver.Address(index)
		if err != nil {
			return Result{}, err
		}

		balance, err := s.oracle.AddressBalance(ctx, address)
		if err != nil {
			return Result{}, errors.Wrapf(err, "address balance at index %d", index)
		}
		res.Scanned++
		s.onLookup()

		// the checkpoint trails the first funded address so the next run rechecks it
		if !found {
			if err := s.store.UpsertCheckpoint(ctx, s.cfg.XPub, index); err != nil {
				return Result{}, errors.Wrap(err, "upsert address checkpoint")
			}
		}

		if balance.IsZero() {
			if found {
				empty++
			}
		} else {
			found = true
			empty = 0
			res.Funded++
			res.TotalBalance = res.TotalBalance.Add(balance)
		}

		s.logger.Debug("address checked",
			zap.Uint32("index", index),
			zap.String("address", address),
			zap.String("balance", balance.String()))

		index++
	}
	res.NextIndex = index

	pair := domain.Bitcoin.PairWith(s.cfg.Fiat)
	price, err := s.pricer.GetPrice(ctx, pair)
	if err != nil {
		return Result{}, errors.Wrapf(err, "get %s price", pair.String())
	}

	record := domain.NewWalletBalance(s.cfg.WalletName, "", domain.Bitcoin, res.TotalBalance, s.cfg.Fiat, price, s.now())
	if err := s.store.InsertBalance(ctx, record); err != nil {
		return Result{}, errors.Wrap(err, "insert wallet balance")
	}
	res.Record = record

	s.logger.Info("wallet balance saved",
		zap.String("wallet", s.cfg.WalletName),
		zap.Int("scanned", res.Scanned),
		zap.Int("funded", res.Funded),
		zap.String("total", res.TotalBalance.String()),
		zap.String("price", price.String()))

	return res, nil
}
