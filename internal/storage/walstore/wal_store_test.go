package walstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

func TestWALStore_ReplaysRecordsAfterReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 0, 2, 0, 0, time.UTC)

	s, err := NewWALStore(dir)
	require.NoError(t, err)

	balance := domain.NewWalletBalance("Trezor - ETH", "0xabc", domain.Ether,
		decimal.RequireFromString("2000000000000000000"), domain.Euro, decimal.NewFromInt(3000), ts)
	require.NoError(t, s.InsertBalance(ctx, balance))
	require.NoError(t, s.UpsertCheckpoint(ctx, "xpub", 2))
	require.NoError(t, s.UpsertCheckpoint(ctx, "xpub", 5))

	total := domain.TotalWalletBalances{
		FromWalletNames: []string{"Trezor - ETH"},
		BalanceInFiat:   decimal.NewFromInt(6000),
		FiatSymbol:      "EUR",
		FiatUnit:        "EUR",
		Timestamp:       time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
	}
	require.NoError(t, s.InsertTotal(ctx, total))
	assert.ErrorIs(t, s.InsertTotal(ctx, total), storage.ErrDuplicateKey)
	require.NoError(t, s.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, reopened.Close())
	}()

	oldest, err := reopened.OldestBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Trezor - ETH", oldest.WalletName)
	assert.True(t, oldest.CoinAmount.Equal(balance.CoinAmount))
	assert.True(t, oldest.Timestamp.Equal(ts))

	index, err := reopened.Checkpoint(ctx, "xpub")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), index)

	exists, err := reopened.TotalExists(ctx, total.Timestamp)
	require.NoError(t, err)
	assert.True(t, exists)

	totals, err := reopened.TotalsInRange(ctx, total.Timestamp, total.Timestamp)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].BalanceInFiat.Equal(decimal.NewFromInt(6000)))
}

func TestWALStore_EmptyLog(t *testing.T) {
	s, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, s.Close())
	}()

	_, err = s.OldestBalance(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Checkpoint(context.Background(), "xpub")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWALStore_RejectsInvalidInput(t *testing.T) {
	s, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, s.Close())
	}()

	ctx := context.Background()
	assert.ErrorIs(t, s.InsertBalance(ctx, domain.WalletBalance{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.InsertTotal(ctx, domain.TotalWalletBalances{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.UpsertCheckpoint(ctx, "", 1), storage.ErrInvalidInput)
}

func TestWALStore_CorruptedSegmentFailsOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewWALStore(dir)
	require.NoError(t, err)
	balance := domain.NewWalletBalance("Trezor - BTC", "", domain.Bitcoin, decimal.NewFromInt(150000),
		domain.Euro, decimal.NewFromInt(50000), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.InsertBalance(ctx, balance))
	require.NoError(t, s.Close())

	segments, err := filepath.Glob(filepath.Join(dir, "records_*"))
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	corrupted := false
	for _, segment := range segments {
		data, err := os.ReadFile(segment)
		require.NoError(t, err)
		if !bytes.Contains(data, []byte("Trezor")) {
			continue
		}
		data = bytes.ReplaceAll(data, []byte("Trezor"), []byte("Trezar"))
		require.NoError(t, os.WriteFile(segment, data, 0o644))
		corrupted = true
	}
	require.True(t, corrupted, "payload not found in any segment")

	_, err = NewWALStore(dir)
	assert.Error(t, err)
}
