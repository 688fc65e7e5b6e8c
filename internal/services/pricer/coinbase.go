package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

type spotPriceClient interface {
	SpotPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

// CoinbasePricer reads the Coinbase spot price.
type CoinbasePricer struct {
	client spotPriceClient
}

func NewCoinbasePricer(client spotPriceClient) *CoinbasePricer {
	return &CoinbasePricer{client: client}
}

func (p *CoinbasePricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	price, err := p.client.SpotPrice(ctx, pair)
	if err != nil {
		return decimal.Zero, err
	}

	return requirePositive(price)
}
