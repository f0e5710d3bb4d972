// Package walletrepo manages repository layer of wallets.
package walletrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/dbpkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
)

// Postgres error codes for lost serialization races.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    wallets (id, owner_id, currency, balance, version, status)
VALUES
    ($1, $2, $3, 0, 1, 'open')
RETURNING id, owner_id, currency, balance, version, status, created_at
`

// Create creates an empty open wallet and then returns it.
func (r *RepoPGS) Create(ctx context.Context, ownerID, currency string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, uuid.NewString(), ownerID, currency)

	var w domain.Wallet

	err := scanWallet(row, &w)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "wallets_owner_id_currency_key" {
				return w, domain.ErrCurrencyAlreadyExists
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getQuery = `
SELECT
	id, owner_id, currency, balance, version, status, created_at
FROM wallets
WHERE id = $1
`

// Get returns the wallet with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var w domain.Wallet

	err := scanWallet(row, &w)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getByOwnerQuery = `
SELECT
	id, owner_id, currency, balance, version, status, created_at
FROM wallets
WHERE owner_id = $1 AND currency = $2
`

// GetByOwner returns the owner's wallet for the given currency.
func (r *RepoPGS) GetByOwner(ctx context.Context, ownerID, currency string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByOwnerQuery, ownerID, currency)

	var w domain.Wallet

	err := scanWallet(row, &w)
	if err != nil {
		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		l.Error().Err(err).Send()

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const listQuery = `
SELECT
	id, owner_id, currency, balance, version, status, created_at
FROM wallets
WHERE owner_id = $1
ORDER BY created_at
`

// List returns all wallets of the given owner.
func (r *RepoPGS) List(ctx context.Context, ownerID string) ([]domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Wallet{}

	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Currency, &w.Balance, &w.Version, &w.Status, &w.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, w)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const addBalanceQuery = `
UPDATE wallets
SET balance = balance + $1, version = version + 1
WHERE id = $2 AND status = 'open'
RETURNING id, owner_id, currency, balance, version, status, created_at
`

// AddBalance applies a signed amount to the wallet's balance and bumps its
// version. The row-level lock taken by UPDATE serializes concurrent balance
// writes; the wallets_balance_check constraint rejects overdrafts.
func (r *RepoPGS) AddBalance(ctx context.Context, amount int64, id string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var w domain.Wallet

	err := scanWallet(row, &w)
	if err != nil {
		if err == sql.ErrNoRows {
			// Either absent or soft-closed; disambiguate for the caller.
			if _, getErr := r.Get(ctx, id); getErr == nil {
				return w, domain.ErrWalletClosed
			}

			return w, domain.ErrWalletNotFound
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch {
			case pqErr.Constraint == "wallets_balance_check":
				return w, domain.ErrInsufficientBalance
			case pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected:
				return w, domain.ErrConcurrencyConflict
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const closeQuery = `
UPDATE wallets
SET status = 'closed', version = version + 1
WHERE id = $1 AND status = 'open'
RETURNING id, owner_id, currency, balance, version, status, created_at
`

// Close soft-closes the wallet. Wallets are never deleted.
func (r *RepoPGS) Close(ctx context.Context, id string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, closeQuery, id)

	var w domain.Wallet

	err := scanWallet(row, &w)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

func scanWallet(row *sql.Row, w *domain.Wallet) error {
	return row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.Currency,
		&w.Balance,
		&w.Version,
		&w.Status,
		&w.CreatedAt,
	)
}
