package pricer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

type fakeSpotClient struct {
	price   decimal.Decimal
	gotPair domain.Pair
}

func (f *fakeSpotClient) SpotPrice(_ context.Context, pair domain.Pair) (decimal.Decimal, error) {
	f.gotPair = pair
	return f.price, nil
}

func TestCoinbasePricer_GetPrice(t *testing.T) {
	client := &fakeSpotClient{price: decimal.NewFromInt(3000)}
	p := NewCoinbasePricer(client)

	price, err := p.GetPrice(context.Background(), domain.Ether.PairWith(domain.Euro))
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, domain.Pair{From: "ETH", To: "EUR"}, client.gotPair)
}

func TestCoinbasePricer_RejectsNonPositivePrice(t *testing.T) {
	for _, price := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		p := NewCoinbasePricer(&fakeSpotClient{price: price})

		_, err := p.GetPrice(context.Background(), domain.Bitcoin.PairWith(domain.Euro))
		assert.Error(t, err, price.String())
	}
}
