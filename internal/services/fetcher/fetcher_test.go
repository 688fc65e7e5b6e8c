package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage/memory"
)

const (
	lowerAddress   = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	checksummedHex = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type stubOracle struct {
	balance decimal.Decimal
	err     error
	asked   string
}

func (o *stubOracle) AccountBalance(_ context.Context, address string) (decimal.Decimal, error) {
	o.asked = address
	return o.balance, o.err
}

type stubPricer struct {
	price decimal.Decimal
	err   error
	pair  domain.Pair
}

func (p *stubPricer) GetPrice(_ context.Context, pair domain.Pair) (decimal.Decimal, error) {
	p.pair = pair
	return p.price, p.err
}

func allBalances(t *testing.T, repo *memory.Repository) []domain.WalletBalance {
	t.Helper()
	out, err := repo.BalancesInRange(context.Background(), time.Time{}, time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	return out
}

func TestFetcher_Run(t *testing.T) {
	oracle := &stubOracle{balance: decimal.RequireFromString("2500000000000000000")}
	pricer := &stubPricer{price: decimal.NewFromInt(2000)}
	repo := memory.NewRepository()

	f, err := NewFetcher(Config{WalletName: "Trezor - ETH", Address: lowerAddress}, oracle, pricer, repo, zap.NewNop())
	require.NoError(t, err)

	record, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, checksummedHex, oracle.asked)
	assert.Equal(t, domain.Pair{From: "ETH", To: "EUR"}, pricer.pair)

	stored := allBalances(t, repo)
	require.Len(t, stored, 1)
	assert.Equal(t, record, stored[0])
	assert.Equal(t, checksummedHex, record.WalletAddress)
	assert.Equal(t, "ETH", record.CoinSymbol)
	assert.Equal(t, "WEI", record.CoinUnit)
	assert.Equal(t, int32(18), record.CoinDecimals)
	assert.True(t, record.FiatValue().Equal(decimal.NewFromInt(5000)))
}

func TestFetcher_ErrorsAbortWithoutWrite(t *testing.T) {
	tests := []struct {
		name   string
		oracle *stubOracle
		pricer *stubPricer
	}{
		{
			name:   "balance failure",
			oracle: &stubOracle{err: errors.New("malformed balance")},
			pricer: &stubPricer{price: decimal.NewFromInt(2000)},
		},
		{
			name:   "price failure",
			oracle: &stubOracle{balance: decimal.NewFromInt(1)},
			pricer: &stubPricer{err: errors.New("status 503")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewRepository()
			f, err := NewFetcher(Config{WalletName: "Trezor - ETH", Address: lowerAddress}, tt.oracle, tt.pricer, repo, zap.NewNop())
			require.NoError(t, err)

			_, err = f.Run(context.Background())
			require.Error(t, err)
			assert.Empty(t, allBalances(t, repo))
		})
	}
}

func TestNewFetcher_InvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "0x123", "not-an-address", "0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed"} {
		_, err := NewFetcher(Config{WalletName: "w", Address: addr}, &stubOracle{}, &stubPricer{}, memory.NewRepository(), zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidAddress, addr)
	}
}

func TestFetcher_Address(t *testing.T) {
	f, err := NewFetcher(Config{WalletName: "w", Address: lowerAddress}, &stubOracle{}, &stubPricer{}, memory.NewRepository(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, checksummedHex, f.Address())
	assert.Equal(t, domain.Euro, f.cfg.Fiat)
}
