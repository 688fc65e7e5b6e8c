// Package storage defines the record store shared by the balance jobs.
package storage

import (
	"context"
	"time"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// BalanceStore is the append-only log of wallet balance observations.
type BalanceStore interface {
	// InsertBalance appends one observation.
	InsertBalance(ctx context.Context, balance domain.WalletBalance) error
	// OldestBalance returns the observation with the smallest timestamp, or ErrNotFound.
	OldestBalance(ctx context.Context) (domain.WalletBalance, error)
	// LatestBalanceAt returns the wallet's most recent observation with timestamp <= at, or ErrNotFound.
	LatestBalanceAt(ctx context.Context, walletName string, at time.Time) (domain.WalletBalance, error)
	// BalancesInRange returns observations with after < timestamp <= until,
	// oldest first, at most limit records (limit <= 0 means no cap).
	BalancesInRange(ctx context.Context, after, until time.Time, limit int) ([]domain.WalletBalance, error)
}

// TotalStore holds the bucketed fiat totals.
type TotalStore interface {
	// TotalExists reports whether a total is stored for exactly ts.
	TotalExists(ctx context.Context, ts time.Time) (bool, error)
	// InsertTotal stores a total. Returns ErrDuplicateKey if one exists for the timestamp.
	InsertTotal(ctx context.Context, total domain.TotalWalletBalances) error
	// TotalsInRange returns totals with from <= timestamp <= to, oldest first.
	TotalsInRange(ctx context.Context, from, to time.Time) ([]domain.TotalWalletBalances, error)
}

// CheckpointStore keeps the address scanner's resumption index per xpub.
type CheckpointStore interface {
	// Checkpoint returns the stored index for xpub, or ErrNotFound.
	Checkpoint(ctx context.Context, xpub string) (uint32, error)
	// UpsertCheckpoint creates or replaces the index for xpub.
	UpsertCheckpoint(ctx context.Context, xpub string, index uint32) error
}

// Repository is the full record store used by the jobs.
type Repository interface {
	BalanceStore
	TotalStore
	CheckpointStore
	Close() error
}
