package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrLoanNotFound indicates that the loan is not found.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrInvalidStateTransition indicates a forbidden loan state transition.
	ErrInvalidStateTransition = errors.New("invalid loan state transition")
	// ErrLoanNotEligible indicates that the user's tier does not qualify for the product.
	ErrLoanNotEligible = errors.New("credit tier not eligible for product")
	// ErrAmountOutOfRange indicates a loan amount outside the product limits.
	ErrAmountOutOfRange = errors.New("loan amount outside product limits")
	// ErrTermOutOfRange indicates a loan term outside the product limits.
	ErrTermOutOfRange = errors.New("loan term outside product limits")
)

// LoanStatus is a state of the loan lifecycle state machine.
type LoanStatus string

// Loan lifecycle states. Rejected, paid and defaulted are terminal.
const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
	LoanDisbursed LoanStatus = "disbursed"
	LoanRepaying  LoanStatus = "repaying"
	LoanPaid      LoanStatus = "paid"
	LoanDefaulted LoanStatus = "defaulted"
)

// loanTransitions enumerates all permitted forward transitions.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending:   {LoanApproved, LoanRejected},
	LoanApproved:  {LoanDisbursed},
	LoanDisbursed: {LoanRepaying},
	LoanRepaying:  {LoanPaid, LoanDefaulted},
}

// CanTransition reports whether from -> to is a permitted transition.
func CanTransition(from, to LoanStatus) bool {
	for _, next := range loanTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// ValidateTransition returns ErrInvalidStateTransition unless from -> to is permitted.
func ValidateTransition(from, to LoanStatus) error {
	if !CanTransition(from, to) {
		return ErrInvalidStateTransition
	}

	return nil
}

// IsTerminal reports whether the status permits no further transitions.
func (s LoanStatus) IsTerminal() bool {
	return len(loanTransitions[s]) == 0
}

// Loan holds the full lifecycle state of a single loan.
//
// All money fields are integer minor units. TotalPayment is always derived as
// MonthlyPayment * TermMonths. RemainingAmount never increases while repaying.
type Loan struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ProductID       string     `json:"product_id"`
	Principal       int64      `json:"principal"`
	AnnualRateBps   int32      `json:"annual_rate_bps"`
	TermMonths      int32      `json:"term_months"`
	MonthlyPayment  int64      `json:"monthly_payment"`
	TotalPayment    int64      `json:"total_payment"`
	RemainingAmount int64      `json:"remaining_amount"`
	MissedPayments  int32      `json:"missed_payments"`
	RepaymentsMade  int32      `json:"repayments_made"`
	Status          LoanStatus `json:"status"`
	Purpose         string     `json:"purpose,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// LoanWithProduct is a loan joined with its catalog product for read projections.
type LoanWithProduct struct {
	Loan
	ProductName string `json:"product_name"`
	ProductTier Tier   `json:"product_tier"`
}

// ApplyLoanParams is the input data for a loan application.
type ApplyLoanParams struct {
	UserID     string
	ProductID  string
	Amount     int64
	TermMonths int32
	Purpose    string
}

// CreateLoanParams is the input data to insert a pending loan record.
type CreateLoanParams struct {
	UserID          string
	ProductID       string
	Principal       int64
	AnnualRateBps   int32
	TermMonths      int32
	MonthlyPayment  int64
	TotalPayment    int64
	RemainingAmount int64
	Purpose         string
}

// DisburseResult is the result of the disbursement transaction.
type DisburseResult struct {
	Loan    Loan       `json:"loan"`
	Deposit MoveResult `json:"deposit"`
}

// RepaymentResult is the result of the repayment transaction.
type RepaymentResult struct {
	Loan             Loan       `json:"loan"`
	Withdrawal       MoveResult `json:"withdrawal"`
	InterestPortion  int64      `json:"interest_portion"`
	PrincipalPortion int64      `json:"principal_portion"`
}

// LoanStats aggregates a user's loan history for credit scoring.
type LoanStats struct {
	Paid           int
	Defaulted      int
	RepaymentsMade int
	MissedPayments int
}

// MonthlyPayment computes the standard amortized installment
// M = P*r*(1+r)^n / ((1+r)^n - 1) where r is the monthly rate and n the term
// in months, rounded once to minor units. A zero rate amortizes linearly.
func MonthlyPayment(principal int64, annualRateBps, termMonths int32) int64 {
	p := decimal.NewFromInt(principal)
	n := int64(termMonths)

	if annualRateBps == 0 {
		return p.Div(decimal.NewFromInt(n)).Round(0).IntPart()
	}

	// monthly rate = bps / 10000 / 12
	r := decimal.NewFromInt(int64(annualRateBps)).
		Div(decimal.NewFromInt(10_000)).
		Div(decimal.NewFromInt(12))

	growth := r.Add(decimal.NewFromInt(1)).Pow(decimal.NewFromInt(n))

	m := p.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))

	return m.Round(0).IntPart()
}

// SplitRepayment splits a repayment into its interest and principal portions
// given the outstanding principal before the payment. The principal portion is
// clamped to [0, remaining] so RemainingAmount never increases or goes
// negative.
func SplitRepayment(remaining int64, annualRateBps int32, amount int64) (interest, principal int64) {
	r := decimal.NewFromInt(int64(annualRateBps)).
		Div(decimal.NewFromInt(10_000)).
		Div(decimal.NewFromInt(12))

	interest = decimal.NewFromInt(remaining).Mul(r).Round(0).IntPart()

	principal = amount - interest
	if principal < 0 {
		principal = 0
	}

	if principal > remaining {
		principal = remaining
	}

	return interest, principal
}
