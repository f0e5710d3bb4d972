// Package loanrepo manages repository layer of loans, including the
// transactions that move money and advance loan state as one unit of work.
package loanrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/ledgerrepo"
	"github.com/kifaa/ledger-core/internal/walletrepo"
	"github.com/kifaa/ledger-core/pkg/dbpkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// RepoPGS facilitates loan repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns loan RepoPGS with a connection to start transactions.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   conn,
		conn: conn,
	}
}

const loanColumns = `
	id, user_id, product_id, principal, annual_rate_bps, term_months,
	monthly_payment, total_payment, remaining_amount, missed_payments,
	repayments_made, status, purpose, created_at, updated_at
`

const createQuery = `
INSERT INTO
    loans (id, user_id, product_id, principal, annual_rate_bps, term_months,
           monthly_payment, total_payment, remaining_amount, status, purpose)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10)
RETURNING` + loanColumns

// Create inserts a pending loan record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateLoanParams) (domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.NewString(),
		arg.UserID,
		arg.ProductID,
		arg.Principal,
		arg.AnnualRateBps,
		arg.TermMonths,
		arg.MonthlyPayment,
		arg.TotalPayment,
		arg.RemainingAmount,
		arg.Purpose,
	)

	var loan domain.Loan

	err := scanLoan(row, &loan)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "loans_product_id_fkey" {
				return loan, domain.ErrProductNotFound
			}
		}

		return loan, errorspkg.ErrInternal
	}

	return loan, nil
}

const getQuery = `
SELECT` + loanColumns + `
FROM loans
WHERE id = $1
`

// Get returns the loan with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Loan, error) {
	return getLoan(ctx, r.db, getQuery, id)
}

const getForUpdateQuery = `
SELECT` + loanColumns + `
FROM loans
WHERE id = $1
FOR UPDATE
`

const listByUserQuery = `
SELECT
	l.id, l.user_id, l.product_id, l.principal, l.annual_rate_bps, l.term_months,
	l.monthly_payment, l.total_payment, l.remaining_amount, l.missed_payments,
	l.repayments_made, l.status, l.purpose, l.created_at, l.updated_at,
	p.name, p.tier_eligibility
FROM loans l
JOIN products p ON p.id = l.product_id
WHERE l.user_id = $1
ORDER BY l.created_at DESC
`

// ListByUser returns the user's loans joined with their products ordered by
// created_at descending.
func (r *RepoPGS) ListByUser(ctx context.Context, userID string) ([]domain.LoanWithProduct, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByUserQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.LoanWithProduct{}

	for rows.Next() {
		var lp domain.LoanWithProduct

		err := rows.Scan(
			&lp.ID,
			&lp.UserID,
			&lp.ProductID,
			&lp.Principal,
			&lp.AnnualRateBps,
			&lp.TermMonths,
			&lp.MonthlyPayment,
			&lp.TotalPayment,
			&lp.RemainingAmount,
			&lp.MissedPayments,
			&lp.RepaymentsMade,
			&lp.Status,
			&lp.Purpose,
			&lp.CreatedAt,
			&lp.UpdatedAt,
			&lp.ProductName,
			&lp.ProductTier,
		)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, lp)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const transitionQuery = `
UPDATE loans
SET status = $1, updated_at = now()
WHERE id = $2 AND status = $3
RETURNING` + loanColumns

// Transition moves the loan from one state to another, guarded by the
// current state in the WHERE clause so a lost race cannot skip states.
func (r *RepoPGS) Transition(ctx context.Context, id string, from, to domain.LoanStatus) (domain.Loan, error) {
	if err := domain.ValidateTransition(from, to); err != nil {
		return domain.Loan{}, err
	}

	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, transitionQuery, to, id, from)

	var loan domain.Loan

	err := scanLoan(row, &loan)
	if err != nil {
		if err == sql.ErrNoRows {
			// Absent or no longer in the expected state.
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return loan, getErr
			}

			return loan, domain.ErrInvalidStateTransition
		}

		l.Error().Err(err).Send()

		return loan, errorspkg.ErrInternal
	}

	return loan, nil
}

const productCurrencyQuery = `
SELECT currency FROM products WHERE id = $1
`

const disburseUpdateQuery = `
UPDATE loans
SET status = $1, updated_at = now()
WHERE id = $2
RETURNING` + loanColumns

// DisburseTx disburses an approved loan.
//
// Within one database transaction it locks the loan row, credits the
// borrower's wallet with the principal through the ledger, and advances the
// state approved -> disbursed -> repaying. A ledger failure rolls the whole
// unit back and the loan stays approved.
func (r *RepoPGS) DisburseTx(ctx context.Context, loanID string) (domain.DisburseResult, error) {
	var result domain.DisburseResult

	err := r.withinTx(ctx, func(q dbpkg.SQLInterface) error {
		loan, err := getLoan(ctx, q, getForUpdateQuery, loanID)
		if err != nil {
			return err
		}

		if err := domain.ValidateTransition(loan.Status, domain.LoanDisbursed); err != nil {
			return err
		}

		var currency string
		if err := q.QueryRowContext(ctx, productCurrencyQuery, loan.ProductID).Scan(&currency); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		wallet, err := walletrepo.NewRepoPGS(q).GetByOwner(ctx, loan.UserID, currency)
		if err != nil {
			return err
		}

		ledger := ledgerrepo.NewTxRepoPGS(q)

		result.Deposit, err = ledger.Deposit(ctx, wallet.ID, loan.Principal, "loan disbursement")
		if err != nil {
			return err
		}

		// First billing cycle starts at disbursement, so the loan passes
		// through disbursed straight into repaying.
		if err := domain.ValidateTransition(domain.LoanDisbursed, domain.LoanRepaying); err != nil {
			return err
		}

		row := q.QueryRowContext(ctx, disburseUpdateQuery, domain.LoanRepaying, loanID)
		if err := scanLoan(row, &result.Loan); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		return nil
	})

	return result, err
}

const repayUpdateQuery = `
UPDATE loans
SET remaining_amount = $1, repayments_made = repayments_made + 1,
    status = $2, updated_at = now()
WHERE id = $3
RETURNING` + loanColumns

// RepayTx records a repayment on a repaying loan.
//
// Within one database transaction it locks the loan row, debits the
// borrower's wallet through the ledger, and decrements the remaining amount
// by the principal portion of the payment. Remaining reaching zero advances
// the loan to paid. A ledger failure (including insufficient balance) rolls
// the whole unit back.
func (r *RepoPGS) RepayTx(ctx context.Context, loanID string, amount int64) (domain.RepaymentResult, error) {
	var result domain.RepaymentResult

	err := r.withinTx(ctx, func(q dbpkg.SQLInterface) error {
		loan, err := getLoan(ctx, q, getForUpdateQuery, loanID)
		if err != nil {
			return err
		}

		if loan.Status != domain.LoanRepaying {
			return domain.ErrInvalidStateTransition
		}

		var currency string
		if err := q.QueryRowContext(ctx, productCurrencyQuery, loan.ProductID).Scan(&currency); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		wallet, err := walletrepo.NewRepoPGS(q).GetByOwner(ctx, loan.UserID, currency)
		if err != nil {
			return err
		}

		ledger := ledgerrepo.NewTxRepoPGS(q)

		result.Withdrawal, err = ledger.Withdraw(ctx, wallet.ID, amount, "loan repayment")
		if err != nil {
			return err
		}

		result.InterestPortion, result.PrincipalPortion = domain.SplitRepayment(loan.RemainingAmount, loan.AnnualRateBps, amount)

		remaining := loan.RemainingAmount - result.PrincipalPortion

		status := domain.LoanRepaying
		if remaining == 0 {
			if err := domain.ValidateTransition(loan.Status, domain.LoanPaid); err != nil {
				return err
			}

			status = domain.LoanPaid
		}

		row := q.QueryRowContext(ctx, repayUpdateQuery, remaining, status, loanID)
		if err := scanLoan(row, &result.Loan); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		return nil
	})

	return result, err
}

const missedUpdateQuery = `
UPDATE loans
SET missed_payments = missed_payments + 1, status = $1, updated_at = now()
WHERE id = $2
RETURNING` + loanColumns

// MarkMissedPayment increments the loan's missed-payment counter under the
// row lock. Crossing the configured threshold while repaying defaults the
// loan regardless of the remaining balance.
func (r *RepoPGS) MarkMissedPayment(ctx context.Context, loanID string, threshold int32) (domain.Loan, error) {
	var result domain.Loan

	err := r.withinTx(ctx, func(q dbpkg.SQLInterface) error {
		loan, err := getLoan(ctx, q, getForUpdateQuery, loanID)
		if err != nil {
			return err
		}

		if loan.Status != domain.LoanRepaying {
			return domain.ErrInvalidStateTransition
		}

		status := domain.LoanRepaying
		if loan.MissedPayments+1 >= threshold {
			if err := domain.ValidateTransition(loan.Status, domain.LoanDefaulted); err != nil {
				return err
			}

			status = domain.LoanDefaulted
		}

		row := q.QueryRowContext(ctx, missedUpdateQuery, status, loanID)
		if err := scanLoan(row, &result); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		return nil
	})

	return result, err
}

const statsQuery = `
SELECT
	COUNT(*) FILTER (WHERE status = 'paid'),
	COUNT(*) FILTER (WHERE status = 'defaulted'),
	COALESCE(SUM(repayments_made), 0),
	COALESCE(SUM(missed_payments), 0)
FROM loans
WHERE user_id = $1
`

// Stats aggregates the user's loan history for credit scoring.
func (r *RepoPGS) Stats(ctx context.Context, userID string) (domain.LoanStats, error) {
	l := zerolog.Ctx(ctx)

	var s domain.LoanStats

	err := r.db.QueryRowContext(ctx, statsQuery, userID).Scan(
		&s.Paid,
		&s.Defaulted,
		&s.RepaymentsMade,
		&s.MissedPayments,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	return s, nil
}

func (r *RepoPGS) withinTx(ctx context.Context, fn func(q dbpkg.SQLInterface) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Send()
		}

		return mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func mapConflict(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected {
			return domain.ErrConcurrencyConflict
		}
	}

	return err
}

func getLoan(ctx context.Context, q dbpkg.SQLInterface, query, id string) (domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	row := q.QueryRowContext(ctx, query, id)

	var loan domain.Loan

	err := scanLoan(row, &loan)
	if err != nil {
		if err == sql.ErrNoRows {
			return loan, domain.ErrLoanNotFound
		}

		l.Error().Err(err).Send()

		return loan, errorspkg.ErrInternal
	}

	return loan, nil
}

func scanLoan(row *sql.Row, loan *domain.Loan) error {
	return row.Scan(
		&loan.ID,
		&loan.UserID,
		&loan.ProductID,
		&loan.Principal,
		&loan.AnnualRateBps,
		&loan.TermMonths,
		&loan.MonthlyPayment,
		&loan.TotalPayment,
		&loan.RemainingAmount,
		&loan.MissedPayments,
		&loan.RepaymentsMade,
		&loan.Status,
		&loan.Purpose,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
}
