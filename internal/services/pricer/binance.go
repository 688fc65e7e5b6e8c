package pricer

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// BinancePricer reads the last traded price of a spot symbol such as BTCEUR.
type BinancePricer struct {
	client *binance.Client
}

func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "binance price %s", pair.Symbol())
	}
	if len(prices) == 0 {
		return decimal.Zero, errors.Errorf("binance returned no price for %s", pair.Symbol())
	}

	return parsePositivePrice(prices[0].Price)
}

// parsePositivePrice rejects prices an exchange may report for halted or unknown symbols.
func parsePositivePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "decode price %q", raw)
	}

	return requirePositive(price)
}

func requirePositive(price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, errors.Errorf("non-positive price %s", price.String())
	}

	return price, nil
}
