// Package walstore persists the balance records in a write-ahead log.
//
// Every write is appended to the WAL first and then applied to an in-memory
// index, which is rebuilt by replaying the log when the store is opened.
package walstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
	"github.com/vadiminshakov/walletbalance/internal/storage/memory"
)

const (
	DefaultDir      = "./wal/balances"
	segmentLimit    = 1000
	maxSegments     = 1 << 20 // segments are never rotated out, the log is the source of truth
	balanceKey      = "wallet_balance"
	totalKey        = "total_wallet_balance"
	checkpointKeyPx = "address_checkpoint_"
)

// WALStore is a storage.Repository backed by gowal.
type WALStore struct {
	wal   *gowal.Wal
	mu    sync.Mutex
	index *memory.Repository
}

var _ storage.Repository = (*WALStore)(nil)

// NewWALStore opens (or creates) the log under dir and replays it.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "records_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init balance WAL")
	}

	s := &WALStore{wal: wal, index: memory.NewRepository()}
	if err := s.replay(); err != nil {
		_ = wal.Close()
		return nil, err
	}

	return s, nil
}

func (s *WALStore) replay() error {
	ctx := context.Background()
	current := s.wal.CurrentIndex()

	for idx := uint64(1); idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			return errors.Wrapf(err, "read wal record %d", idx)
		}
		if key == "" {
			continue
		}

		switch {
		case key == balanceKey:
			var balance domain.WalletBalance
			if err := json.Unmarshal(payload, &balance); err != nil {
				return errors.Wrapf(err, "decode wallet balance at %d", idx)
			}
			if err := s.index.InsertBalance(ctx, balance); err != nil {
				return errors.Wrapf(err, "replay wallet balance at %d", idx)
			}
		case key == totalKey:
			var total domain.TotalWalletBalances
			if err := json.Unmarshal(payload, &total); err != nil {
				return errors.Wrapf(err, "decode total balance at %d", idx)
			}
			if err := s.index.InsertTotal(ctx, total); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
				return errors.Wrapf(err, "replay total balance at %d", idx)
			}
		case strings.HasPrefix(key, checkpointKeyPx):
			var checkpoint domain.AddressCheckpoint
			if err := json.Unmarshal(payload, &checkpoint); err != nil {
				return errors.Wrapf(err, "decode checkpoint at %d", idx)
			}
			if err := s.index.UpsertCheckpoint(ctx, checkpoint.XPub, checkpoint.Index); err != nil {
				return errors.Wrapf(err, "replay checkpoint at %d", idx)
			}
		}
	}

	return nil
}

func (s *WALStore) append(key string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", key)
	}

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// InsertBalance appends the observation to the log.
func (s *WALStore) InsertBalance(ctx context.Context, balance domain.WalletBalance) error {
	if s == nil || s.wal == nil {
		return errors.New("balance WAL store is not initialized")
	}
	if balance.WalletName == "" || balance.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(balanceKey, balance); err != nil {
		return err
	}

	return s.index.InsertBalance(ctx, balance)
}

// OldestBalance returns the earliest observation.
func (s *WALStore) OldestBalance(ctx context.Context) (domain.WalletBalance, error) {
	return s.index.OldestBalance(ctx)
}

// LatestBalanceAt returns the wallet's newest observation at or before at.
func (s *WALStore) LatestBalanceAt(ctx context.Context, walletName string, at time.Time) (domain.WalletBalance, error) {
	return s.index.LatestBalanceAt(ctx, walletName, at)
}

// BalancesInRange returns observations in (after, until].
func (s *WALStore) BalancesInRange(ctx context.Context, after, until time.Time, limit int) ([]domain.WalletBalance, error) {
	return s.index.BalancesInRange(ctx, after, until, limit)
}

// TotalExists reports whether a total exists at ts.
func (s *WALStore) TotalExists(ctx context.Context, ts time.Time) (bool, error) {
	return s.index.TotalExists(ctx, ts)
}

// InsertTotal appends the total unless one exists for its timestamp.
func (s *WALStore) InsertTotal(ctx context.Context, total domain.TotalWalletBalances) error {
	if s == nil || s.wal == nil {
		return errors.New("balance WAL store is not initialized")
	}
	if total.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.index.TotalExists(ctx, total.Timestamp)
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	if err := s.append(totalKey, total); err != nil {
		return err
	}

	return s.index.InsertTotal(ctx, total)
}

// TotalsInRange returns totals in [from, to].
func (s *WALStore) TotalsInRange(ctx context.Context, from, to time.Time) ([]domain.TotalWalletBalances, error) {
	return s.index.TotalsInRange(ctx, from, to)
}

// Checkpoint returns the latest index logged for xpub.
func (s *WALStore) Checkpoint(ctx context.Context, xpub string) (uint32, error) {
	return s.index.Checkpoint(ctx, xpub)
}

// UpsertCheckpoint logs a new index for xpub; the last entry wins on replay.
func (s *WALStore) UpsertCheckpoint(ctx context.Context, xpub string, index uint32) error {
	if s == nil || s.wal == nil {
		return errors.New("balance WAL store is not initialized")
	}
	if xpub == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoint := domain.AddressCheckpoint{XPub: xpub, Index: index, UpdatedAt: time.Now().UTC()}
	if err := s.append(fmt.Sprintf("%s%s", checkpointKeyPx, xpub), checkpoint); err != nil {
		return err
	}

	return s.index.UpsertCheckpoint(ctx, xpub, index)
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("balance WAL store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
