// Package fetcher records the balance of a single Ethereum address.
package fetcher

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// ErrInvalidAddress is returned for an address that is not 20 hex-encoded bytes.
var ErrInvalidAddress = errors.New("invalid ethereum address")

type balanceOracle interface {
	AccountBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

type priceService interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

type balanceStore interface {
	InsertBalance(ctx context.Context, balance domain.WalletBalance) error
}

// Config describes the watched address.
type Config struct {
	WalletName string
	Address    string
	Fiat       domain.Fiat
}

// Fetcher queries one address and stores its balance.
type Fetcher struct {
	cfg     Config
	address common.Address
	oracle  balanceOracle
	pricer  priceService
	store   balanceStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewFetcher validates the address and normalises it to its checksummed form.
func NewFetcher(cfg Config, oracle balanceOracle, pricer priceService, st balanceStore, logger *zap.Logger) (*Fetcher, error) {
	if cfg.WalletName == "" {
		return nil, errors.New("wallet name is required")
	}
	if !common.IsHexAddress(cfg.Address) {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", cfg.Address)
	}
	if cfg.Fiat.Symbol == "" {
		cfg.Fiat = domain.Euro
	}

	return &Fetcher{
		cfg:     cfg,
		address: common.HexToAddress(cfg.Address),
		oracle:  oracle,
		pricer:  pricer,
		store:   st,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Address returns the checksummed address being watched.
func (f *Fetcher) Address() string {
	return f.address.Hex()
}

// Run fetches balance and price, then inserts one WalletBalance.
func (f *Fetcher) Run(ctx context.Context) (domain.WalletBalance, error) {
	address := f.address.Hex()

	balance, err := f.oracle.AccountBalance(ctx, address)
	if err != nil {
		return domain.WalletBalance{}, errors.Wrapf(err, "account balance of %s", address)
	}

	pair := domain.Ether.PairWith(f.cfg.Fiat)
	price, err := f.pricer.GetPrice(ctx, pair)
	if err != nil {
		return domain.WalletBalance{}, errors.Wrapf(err, "get %s price", pair.String())
	}

	record := domain.NewWalletBalance(f.cfg.WalletName, address, domain.Ether, balance, f.cfg.Fiat, price, f.now())
	if err := f.store.InsertBalance(ctx, record); err != nil {
		return domain.WalletBalance{}, errors.Wrap(err, "insert wallet balance")
	}

	f.logger.Info("wallet balance saved",
		zap.String("wallet", f.cfg.WalletName),
		zap.String("address", address),
		zap.String("balance", balance.String()),
		zap.String("price", price.String()),
		zap.String("fiat_value", record.FiatValue().StringFixed(2)))

	return record, nil
}
