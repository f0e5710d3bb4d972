// Package loanservice manages business logic layer of the loan lifecycle.
package loanservice

import (
	"context"
	"errors"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/retrypkg"
)

// Repo provides data access layer interface needed by loan service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package loanservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateLoanParams) (domain.Loan, error)
	Get(ctx context.Context, id string) (domain.Loan, error)
	ListByUser(ctx context.Context, userID string) ([]domain.LoanWithProduct, error)
	Transition(ctx context.Context, id string, from, to domain.LoanStatus) (domain.Loan, error)
	DisburseTx(ctx context.Context, loanID string) (domain.DisburseResult, error)
	RepayTx(ctx context.Context, loanID string, amount int64) (domain.RepaymentResult, error)
	MarkMissedPayment(ctx context.Context, loanID string, threshold int32) (domain.Loan, error)
}

// ProductRepo provides catalog access needed by loan service layer.
type ProductRepo interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
}

// Scorer provides the credit score used to gate product eligibility.
type Scorer interface {
	Get(ctx context.Context, userID string) (domain.CreditScore, error)
}

// Service facilitates loan service layer logic.
type Service struct {
	repo            Repo
	products        ProductRepo
	scorer          Scorer
	missedThreshold int32
}

// New returns loan service struct to manage loan business logic.
func New(lr Repo, pr ProductRepo, sc Scorer, missedThreshold int32) *Service {
	return &Service{
		repo:            lr,
		products:        pr,
		scorer:          sc,
		missedThreshold: missedThreshold,
	}
}

// Apply validates a loan application against the product limits and the
// user's credit tier and inserts the pending loan with its amortized
// installment.
func (s *Service) Apply(ctx context.Context, arg domain.ApplyLoanParams) (domain.Loan, error) {
	if arg.Amount <= 0 {
		return domain.Loan{}, domain.ErrInvalidAmount
	}

	product, err := s.products.Get(ctx, arg.ProductID)
	if err != nil {
		return domain.Loan{}, err
	}

	if !product.Active {
		return domain.Loan{}, domain.ErrProductInactive
	}

	if arg.Amount < product.MinAmount || arg.Amount > product.MaxAmount {
		return domain.Loan{}, domain.ErrAmountOutOfRange
	}

	if arg.TermMonths < product.MinTermMonths || arg.TermMonths > product.MaxTermMonths {
		return domain.Loan{}, domain.ErrTermOutOfRange
	}

	score, err := s.scorer.Get(ctx, arg.UserID)
	if err != nil {
		return domain.Loan{}, err
	}

	if !score.Tier.AtLeast(product.Tier) {
		return domain.Loan{}, domain.ErrLoanNotEligible
	}

	monthly := domain.MonthlyPayment(arg.Amount, product.AnnualRateBps, arg.TermMonths)

	return s.repo.Create(ctx, domain.CreateLoanParams{
		UserID:          arg.UserID,
		ProductID:       arg.ProductID,
		Principal:       arg.Amount,
		AnnualRateBps:   product.AnnualRateBps,
		TermMonths:      arg.TermMonths,
		MonthlyPayment:  monthly,
		TotalPayment:    monthly * int64(arg.TermMonths),
		RemainingAmount: arg.Amount,
		Purpose:         arg.Purpose,
	})
}

// Approve moves a pending loan to approved.
func (s *Service) Approve(ctx context.Context, loanID string) (domain.Loan, error) {
	return s.repo.Transition(ctx, loanID, domain.LoanPending, domain.LoanApproved)
}

// Reject moves a pending loan to its rejected terminal state.
func (s *Service) Reject(ctx context.Context, loanID string) (domain.Loan, error) {
	return s.repo.Transition(ctx, loanID, domain.LoanPending, domain.LoanRejected)
}

// Disburse credits the borrower's wallet with the principal and starts
// repayment. The ledger deposit and the state transition commit as one unit
// of work; on a ledger failure the loan does not advance.
func (s *Service) Disburse(ctx context.Context, loanID string) (domain.DisburseResult, error) {
	var result domain.DisburseResult

	err := s.retryConflicts(ctx, func() error {
		var err error
		result, err = s.repo.DisburseTx(ctx, loanID)

		return err
	})

	return result, err
}

// RecordRepayment debits the borrower's wallet and applies the payment's
// principal portion to the remaining amount, settling the loan when it
// reaches zero.
func (s *Service) RecordRepayment(ctx context.Context, loanID string, amount int64) (domain.RepaymentResult, error) {
	if amount <= 0 {
		return domain.RepaymentResult{}, domain.ErrInvalidAmount
	}

	var result domain.RepaymentResult

	err := s.retryConflicts(ctx, func() error {
		var err error
		result, err = s.repo.RepayTx(ctx, loanID, amount)

		return err
	})

	return result, err
}

// RecordMissedPayment increments the missed-payment counter; crossing the
// configured threshold defaults the loan.
func (s *Service) RecordMissedPayment(ctx context.Context, loanID string) (domain.Loan, error) {
	return s.repo.MarkMissedPayment(ctx, loanID, s.missedThreshold)
}

// Get returns the loan with the given id.
func (s *Service) Get(ctx context.Context, loanID string) (domain.Loan, error) {
	return s.repo.Get(ctx, loanID)
}

// List returns the user's loans joined with their products.
func (s *Service) List(ctx context.Context, userID string) ([]domain.LoanWithProduct, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Products returns the active product catalog.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListActive(ctx)
}

func (s *Service) retryConflicts(ctx context.Context, fn func() error) error {
	err := retrypkg.Do(ctx, retrypkg.DefaultRetries, func(err error) bool {
		return errors.Is(err, domain.ErrConcurrencyConflict)
	}, fn)

	if errors.Is(err, domain.ErrConcurrencyConflict) {
		return errorspkg.ErrInternal
	}

	return err
}
