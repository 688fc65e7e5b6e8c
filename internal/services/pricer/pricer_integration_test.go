//go:build integration

package pricer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/walletbalance/internal/clients"
	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// TestPricers_GetPrice_Integration calls the real public APIs.
// To run this test, use: go test -tags=integration -v ./...
func TestPricers_GetPrice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pricers := map[string]Pricer{
		SourceCoinbase: NewCoinbasePricer(clients.NewCoinbaseClient("", 10*time.Second)),
		SourceBinance:  NewBinancePricer(clients.NewBinanceClient()),
		SourceBybit:    NewBybitPricer(clients.NewBybitClient()),
	}

	for source, p := range pricers {
		t.Run(source, func(t *testing.T) {
			for _, coin := range []domain.Coin{domain.Bitcoin, domain.Ether} {
				pair := coin.PairWith(domain.Euro)

				price, err := p.GetPrice(context.Background(), pair)
				require.NoError(t, err)
				assert.True(t, price.GreaterThan(decimal.Zero), "Expected price > 0 for %s, got %s", pair.String(), price.String())
				t.Logf("Current %s price on %s: %s", pair.String(), source, price.String())
			}
		})
	}
}
