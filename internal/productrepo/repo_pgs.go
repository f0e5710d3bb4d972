// Package productrepo manages the read-only loan product catalog.
package productrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/dbpkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
)

// RepoPGS facilitates product repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns product RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const getQuery = `
SELECT
	id, name, tier_eligibility, currency, annual_rate_bps,
	min_amount, max_amount, min_term_months, max_term_months, active, created_at
FROM products
WHERE id = $1
`

// Get returns the product with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Product, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var p domain.Product

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Tier,
		&p.Currency,
		&p.AnnualRateBps,
		&p.MinAmount,
		&p.MaxAmount,
		&p.MinTermMonths,
		&p.MaxTermMonths,
		&p.Active,
		&p.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return p, domain.ErrProductNotFound
		}

		l.Error().Err(err).Send()

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const listActiveQuery = `
SELECT
	id, name, tier_eligibility, currency, annual_rate_bps,
	min_amount, max_amount, min_term_months, max_term_months, active, created_at
FROM products
WHERE active
ORDER BY min_amount
`

// ListActive returns the active product catalog.
func (r *RepoPGS) ListActive(ctx context.Context) ([]domain.Product, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listActiveQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Product{}

	for rows.Next() {
		var p domain.Product

		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Tier,
			&p.Currency,
			&p.AnnualRateBps,
			&p.MinAmount,
			&p.MaxAmount,
			&p.MinTermMonths,
			&p.MaxTermMonths,
			&p.Active,
			&p.CreatedAt,
		)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
