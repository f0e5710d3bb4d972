// Package transactionrepo manages the append-only transaction log.
package transactionrepo

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

// RepoPGS facilitates transaction log repository layer logic.
//
// Rows are append-only: there are no update or delete queries in this
// package, corrections are new offsetting transactions.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (id, wallet_id, counterparty_wallet_id, correlation_id, type, amount, currency, description, status)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, wallet_id, counterparty_wallet_id, correlation_id, type, amount, currency, description, status, created_at
`

// Create appends a transaction row and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.NewString(),
		arg.WalletID,
		nullable(arg.CounterpartyWalletID),
		nullable(arg.CorrelationID),
		arg.Type,
		arg.Amount,
		arg.Currency,
		arg.Description,
		arg.Status,
	)

	var t domain.Transaction

	err := scanTransaction(row, &t)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_wallet_id_fkey":
				return t, domain.ErrWalletNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByUserQuery = `
SELECT
	t.id, t.wallet_id, t.counterparty_wallet_id, t.correlation_id, t.type,
	t.amount, t.currency, t.description, t.status, t.created_at
FROM transactions t
JOIN wallets w ON w.id = t.wallet_id
WHERE w.owner_id = $1
ORDER BY t.created_at DESC
LIMIT $2 OFFSET $3
`

// ListByUser returns the user's transactions across all wallets ordered by
// created_at descending.
func (r *RepoPGS) ListByUser(ctx context.Context, ownerID string, limit, offset int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByUserQuery, ownerID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var (
			t            domain.Transaction
			counterparty sql.NullString
			correlation  sql.NullString
		)

		err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&counterparty,
			&correlation,
			&t.Type,
			&t.Amount,
			&t.Currency,
			&t.Description,
			&t.Status,
			&t.CreatedAt,
		)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		t.CounterpartyWalletID = counterparty.String
		t.CorrelationID = correlation.String

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const depositMonthsQuery = `
SELECT COUNT(DISTINCT date_trunc('month', t.created_at))
FROM transactions t
JOIN wallets w ON w.id = t.wallet_id
WHERE w.owner_id = $1
  AND t.type = 'deposit'
  AND t.status = 'committed'
  AND t.created_at > now() - interval '12 months'
`

// DepositMonths returns the number of distinct months with at least one
// committed deposit over the trailing twelve months.
func (r *RepoPGS) DepositMonths(ctx context.Context, ownerID string) (int, error) {
	l := zerolog.Ctx(ctx)

	var months int
	if err := r.db.QueryRowContext(ctx, depositMonthsQuery, ownerID).Scan(&months); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return months, nil
}

const withdrawalStatsQuery = `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE t.status = 'failed')
FROM transactions t
JOIN wallets w ON w.id = t.wallet_id
WHERE w.owner_id = $1 AND t.type = 'withdraw'
`

// WithdrawalStats returns the user's total withdrawal attempts and how many
// of them bounced.
func (r *RepoPGS) WithdrawalStats(ctx context.Context, ownerID string) (attempts, bounced int, err error) {
	l := zerolog.Ctx(ctx)

	if err := r.db.QueryRowContext(ctx, withdrawalStatsQuery, ownerID).Scan(&attempts, &bounced); err != nil {
		l.Error().Err(err).Send()
		return 0, 0, errorspkg.ErrInternal
	}

	return attempts, bounced, nil
}

func scanTransaction(row *sql.Row, t *domain.Transaction) error {
	var counterparty, correlation sql.NullString

	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&counterparty,
		&correlation,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
	)
	if err != nil {
		return err
	}

	t.CounterpartyWalletID = counterparty.String
	t.CorrelationID = correlation.String

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
