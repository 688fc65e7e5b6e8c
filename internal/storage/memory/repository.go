// Package memory provides an in-memory storage.Repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

// Repository is an in-memory implementation of storage.Repository.
// Balances are kept sorted by timestamp; equal timestamps keep insertion order.
type Repository struct {
	mu          sync.RWMutex
	balances    []domain.WalletBalance
	totals      map[int64]domain.TotalWalletBalances // keyed by unix nanos
	checkpoints map[string]uint32
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		totals:      make(map[int64]domain.TotalWalletBalances),
		checkpoints: make(map[string]uint32),
	}
}

// InsertBalance appends an observation.
func (r *Repository) InsertBalance(_ context.Context, balance domain.WalletBalance) error {
	if balance.WalletName == "" || balance.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// first position strictly after the new timestamp
	pos := sort.Search(len(r.balances), func(i int) bool {
		return r.balances[i].Timestamp.After(balance.Timestamp)
	})
	r.balances = append(r.balances, domain.WalletBalance{})
	copy(r.balances[pos+1:], r.balances[pos:])
	r.balances[pos] = balance

	return nil
}

// OldestBalance returns the earliest observation.
func (r *Repository) OldestBalance(_ context.Context) (domain.WalletBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.balances) == 0 {
		return domain.WalletBalance{}, storage.ErrNotFound
	}

	return r.balances[0], nil
}

// LatestBalanceAt returns the wallet's newest observation at or before at.
func (r *Repository) LatestBalanceAt(_ context.Context, walletName string, at time.Time) (domain.WalletBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	end := sort.Search(len(r.balances), func(i int) bool {
		return r.balances[i].Timestamp.After(at)
	})
	for i := end - 1; i >= 0; i-- {
		if r.balances[i].WalletName == walletName {
			return r.balances[i], nil
		}
	}

	return domain.WalletBalance{}, storage.ErrNotFound
}

// BalancesInRange returns observations in (after, until], oldest first.
func (r *Repository) BalancesInRange(_ context.Context, after, until time.Time, limit int) ([]domain.WalletBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := sort.Search(len(r.balances), func(i int) bool {
		return r.balances[i].Timestamp.After(after)
	})

	var result []domain.WalletBalance
	for i := start; i < len(r.balances); i++ {
		if r.balances[i].Timestamp.After(until) {
			break
		}
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, r.balances[i])
	}

	return result, nil
}

// TotalExists reports whether a total exists at ts.
func (r *Repository) TotalExists(_ context.Context, ts time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.totals[ts.UnixNano()]
	return ok, nil
}

// InsertTotal stores a total once per timestamp.
func (r *Repository) InsertTotal(_ context.Context, total domain.TotalWalletBalances) error {
	if total.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := total.Timestamp.UnixNano()
	if _, exists := r.totals[key]; exists {
		return storage.ErrDuplicateKey
	}

	names := make([]string, len(total.FromWalletNames))
	copy(names, total.FromWalletNames)
	total.FromWalletNames = names
	r.totals[key] = total

	return nil
}

// TotalsInRange returns totals in [from, to], oldest first.
func (r *Repository) TotalsInRange(_ context.Context, from, to time.Time) ([]domain.TotalWalletBalances, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.TotalWalletBalances
	for _, total := range r.totals {
		if total.Timestamp.Before(from) || total.Timestamp.After(to) {
			continue
		}
		result = append(result, total)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// Checkpoint returns the stored index for xpub.
func (r *Repository) Checkpoint(_ context.Context, xpub string) (uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, ok := r.checkpoints[xpub]
	if !ok {
		return 0, storage.ErrNotFound
	}

	return index, nil
}

// UpsertCheckpoint sets the index for xpub.
func (r *Repository) UpsertCheckpoint(_ context.Context, xpub string, index uint32) error {
	if xpub == "" {
		return storage.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkpoints[xpub] = index

	return nil
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}
