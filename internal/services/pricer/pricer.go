// Package pricer fetches spot prices of a coin in fiat.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// Price sources.
const (
	SourceCoinbase = "coinbase"
	SourceBinance  = "binance"
	SourceBybit    = "bybit"
)

// Pricer returns the price of one whole pair.From coin in pair.To.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
