package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
	"github.com/vadiminshakov/walletbalance/internal/storage"
)

const balanceColumns = `
	wallet_name, COALESCE(wallet_address, ''), coin_symbol, coin_unit,
	coin_amount::text, coin_decimals, fiat_symbol, fiat_unit,
	coin_price_in_fiat::text, ts`

// Repository implements storage.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a Repository on top of an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBalance appends an observation.
func (r *Repository) InsertBalance(ctx context.Context, b domain.WalletBalance) error {
	if b.WalletName == "" || b.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	var address *string
	if b.WalletAddress != "" {
		address = &b.WalletAddress
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallet_balances (
			id, wallet_name, wallet_address, coin_symbol, coin_unit,
			coin_amount, coin_decimals, fiat_symbol, fiat_unit,
			coin_price_in_fiat, ts
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10::numeric, $11)
	`,
		uuid.New().String(),
		b.WalletName,
		address,
		b.CoinSymbol,
		b.CoinUnit,
		b.CoinAmount.String(),
		b.CoinDecimals,
		b.FiatSymbol,
		b.FiatUnit,
		b.CoinPriceInFiat.String(),
		b.Timestamp.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "insert wallet balance")
	}

	return nil
}

// OldestBalance returns the earliest observation.
func (r *Repository) OldestBalance(ctx context.Context) (domain.WalletBalance, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+balanceColumns+` FROM wallet_balances ORDER BY ts ASC LIMIT 1`)

	b, err := scanBalance(row)
	if err != nil {
		return domain.WalletBalance{}, errors.Wrap(err, "select oldest wallet balance")
	}

	return b, nil
}

// LatestBalanceAt returns the wallet's newest observation at or before at.
func (r *Repository) LatestBalanceAt(ctx context.Context, walletName string, at time.Time) (domain.WalletBalance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM wallet_balances
		WHERE wallet_name = $1 AND ts <= $2
		ORDER BY ts DESC, inserted_at DESC
		LIMIT 1
	`, walletName, at.UTC())

	b, err := scanBalance(row)
	if err != nil {
		return domain.WalletBalance{}, errors.Wrapf(err, "select latest balance of %s", walletName)
	}

	return b, nil
}

// BalancesInRange returns observations in (after, until], oldest first.
func (r *Repository) BalancesInRange(ctx context.Context, after, until time.Time, limit int) ([]domain.WalletBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM wallet_balances
		WHERE ts > $1 AND ts <= $2
		ORDER BY ts ASC, inserted_at ASC`
	args := []any{after.UTC(), until.UTC()}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query wallet balances")
	}
	defer rows.Close()

	var result []domain.WalletBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan wallet balance")
		}
		result = append(result, b)
	}

	return result, errors.Wrap(rows.Err(), "iterate wallet balances")
}

// TotalExists reports whether a total exists at ts.
func (r *Repository) TotalExists(ctx context.Context, ts time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM total_wallet_balances WHERE ts = $1)`, ts.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check total wallet balance")
	}

	return exists, nil
}

// InsertTotal stores a total. Returns storage.ErrDuplicateKey if ts is taken.
func (r *Repository) InsertTotal(ctx context.Context, t domain.TotalWalletBalances) error {
	if t.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO total_wallet_balances (ts, from_wallet_names, balance_in_fiat, fiat_symbol, fiat_unit)
		VALUES ($1, $2, $3::numeric, $4, $5)
	`, t.Timestamp.UTC(), t.FromWalletNames, t.BalanceInFiat.String(), t.FiatSymbol, t.FiatUnit)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return errors.Wrap(err, "insert total wallet balance")
	}

	return nil
}

// TotalsInRange returns totals in [from, to], oldest first.
func (r *Repository) TotalsInRange(ctx context.Context, from, to time.Time) ([]domain.TotalWalletBalances, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ts, from_wallet_names, balance_in_fiat::text, fiat_symbol, fiat_unit
		FROM total_wallet_balances
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "query total wallet balances")
	}
	defer rows.Close()

	var result []domain.TotalWalletBalances
	for rows.Next() {
		var (
			t     domain.TotalWalletBalances
			total string
		)
		if err := rows.Scan(&t.Timestamp, &t.FromWalletNames, &total, &t.FiatSymbol, &t.FiatUnit); err != nil {
			return nil, errors.Wrap(err, "scan total wallet balance")
		}
		if t.BalanceInFiat, err = decimal.NewFromString(total); err != nil {
			return nil, errors.Wrap(err, "decode balance_in_fiat")
		}
		t.Timestamp = t.Timestamp.UTC()
		result = append(result, t)
	}

	return result, errors.Wrap(rows.Err(), "iterate total wallet balances")
}

// Checkpoint returns the stored index for xpub.
func (r *Repository) Checkpoint(ctx context.Context, xpub string) (uint32, error) {
	var index int64
	err := r.pool.QueryRow(ctx, `SELECT idx FROM wallet_address_indexes WHERE xpub = $1`, xpub).Scan(&index)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, errors.Wrap(err, "select address checkpoint")
	}

	return uint32(index), nil
}

// UpsertCheckpoint sets the index for xpub.
func (r *Repository) UpsertCheckpoint(ctx context.Context, xpub string, index uint32) error {
	if xpub == "" {
		return storage.ErrInvalidInput
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallet_address_indexes (xpub, idx, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (xpub) DO UPDATE
		SET idx = EXCLUDED.idx,
		    updated_at = NOW()
	`, xpub, int64(index))
	if err != nil {
		return errors.Wrap(err, "upsert address checkpoint")
	}

	return nil
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func scanBalance(row pgx.Row) (domain.WalletBalance, error) {
	var (
		b      domain.WalletBalance
		amount string
		price  string
	)

	err := row.Scan(
		&b.WalletName,
		&b.WalletAddress,
		&b.CoinSymbol,
		&b.CoinUnit,
		&amount,
		&b.CoinDecimals,
		&b.FiatSymbol,
		&b.FiatUnit,
		&price,
		&b.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WalletBalance{}, storage.ErrNotFound
		}
		return domain.WalletBalance{}, err
	}

	if b.CoinAmount, err = decimal.NewFromString(amount); err != nil {
		return domain.WalletBalance{}, errors.Wrap(err, "decode coin_amount")
	}
	if b.CoinPriceInFiat, err = decimal.NewFromString(price); err != nil {
		return domain.WalletBalance{}, errors.Wrap(err, "decode coin_price_in_fiat")
	}
	b.Timestamp = b.Timestamp.UTC()

	return b, nil
}
