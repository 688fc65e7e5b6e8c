package pricer

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// BybitPricer reads the last spot trade from the V5 tickers endpoint.
type BybitPricer struct {
	client *bybit.Client
}

func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

// GetPrice ignores ctx: the bybit SDK does not accept one.
func (p *BybitPricer) GetPrice(_ context.Context, pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "bybit ticker %s", pair.Symbol())
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Zero, errors.Errorf("bybit returned no ticker for %s", pair.Symbol())
	}

	return parsePositivePrice(result.Result.Spot.List[0].LastPrice)
}
