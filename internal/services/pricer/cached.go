package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

type priceCache interface {
	Get(ctx context.Context, source string, pair domain.Pair) (decimal.Decimal, bool, error)
	Set(ctx context.Context, source string, pair domain.Pair, price decimal.Decimal) error
}

// CachedPricer serves prices from a cache and falls back to the wrapped Pricer on a miss.
// Cache failures are logged and never fail the lookup.
type CachedPricer struct {
	next   Pricer
	cache  priceCache
	source string
	logger *zap.Logger
}

func NewCachedPricer(next Pricer, cache priceCache, source string, logger *zap.Logger) *CachedPricer {
	return &CachedPricer{next: next, cache: cache, source: source, logger: logger}
}

func (p *CachedPricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	price, ok, err := p.cache.Get(ctx, p.source, pair)
	if err != nil {
		p.logger.Warn("price cache read failed", zap.String("pair", pair.String()), zap.Error(err))
	}
	if ok {
		p.logger.Debug("price cache hit", zap.String("pair", pair.String()), zap.String("price", price.String()))
		return price, nil
	}

	price, err = p.next.GetPrice(ctx, pair)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if err := p.cache.Set(ctx, p.source, pair, price); err != nil {
		p.logger.Warn("price cache write failed", zap.String("pair", pair.String()), zap.Error(err))
	}

	return price, nil
}
