// Package scoreservice derives credit scores and tiers from the transaction
// log and loan history.
package scoreservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
)

// TransactionStats provides the transaction log aggregates the scoring
// function is computed over.
//
//go:generate mockgen -source service.go -destination service_mock.go -package scoreservice
type TransactionStats interface {
	DepositMonths(ctx context.Context, ownerID string) (int, error)
	WithdrawalStats(ctx context.Context, ownerID string) (attempts, bounced int, err error)
}

// LoanStats provides the loan history aggregates.
type LoanStats interface {
	Stats(ctx context.Context, userID string) (domain.LoanStats, error)
}

// ProgressRepo reports per-user improvement action completion.
type ProgressRepo interface {
	IsCompleted(ctx context.Context, userID, actionID string) (bool, error)
}

// Cache stores recent score snapshots. Reads tolerate a stale-by-TTL value;
// they never block on money-movement transactions.
type Cache interface {
	Get(ctx context.Context, userID string) (domain.CreditScore, bool, error)
	Set(ctx context.Context, score domain.CreditScore) error
}

// Service facilitates credit scoring service layer logic.
type Service struct {
	transactions TransactionStats
	loans        LoanStats
	progress     ProgressRepo
	cache        Cache
}

// New returns score service struct to manage credit scoring logic.
func New(ts TransactionStats, ls LoanStats, pr ProgressRepo, c Cache) *Service {
	return &Service{
		transactions: ts,
		loans:        ls,
		progress:     pr,
		cache:        c,
	}
}

// Get returns the user's credit score, serving a recent cached snapshot when
// one exists and computing a fresh one otherwise.
func (s *Service) Get(ctx context.Context, userID string) (domain.CreditScore, error) {
	l := zerolog.Ctx(ctx)

	if score, ok, err := s.cache.Get(ctx, userID); err == nil && ok {
		return score, nil
	} else if err != nil {
		l.Warn().Err(err).Msg("score cache read")
	}

	return s.Refresh(ctx, userID)
}

// Refresh recomputes the user's score and replaces the cached snapshot.
// Scores are never mutated in place.
func (s *Service) Refresh(ctx context.Context, userID string) (domain.CreditScore, error) {
	l := zerolog.Ctx(ctx)

	inputs, err := s.gather(ctx, userID)
	if err != nil {
		return domain.CreditScore{}, err
	}

	value := Score(inputs)

	score := domain.CreditScore{
		UserID:     userID,
		Score:      value,
		Tier:       domain.TierFromScore(value),
		ComputedAt: time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, score); err != nil {
		l.Warn().Err(err).Msg("score cache write")
	}

	return score, nil
}

func (s *Service) gather(ctx context.Context, userID string) (domain.ScoreInputs, error) {
	var in domain.ScoreInputs

	months, err := s.transactions.DepositMonths(ctx, userID)
	if err != nil {
		return in, err
	}

	attempts, bounced, err := s.transactions.WithdrawalStats(ctx, userID)
	if err != nil {
		return in, err
	}

	loanStats, err := s.loans.Stats(ctx, userID)
	if err != nil {
		return in, err
	}

	verified, err := s.progress.IsCompleted(ctx, userID, domain.ActionVerifyIncome)
	if err != nil {
		return in, err
	}

	in.DepositMonths = months
	in.WithdrawalAttempts = attempts
	in.BouncedWithdrawals = bounced
	in.RepaymentsMade = loanStats.RepaymentsMade
	in.MissedPayments = loanStats.MissedPayments
	in.LoansPaid = loanStats.Paid
	in.LoansDefaulted = loanStats.Defaulted
	in.IncomeVerified = verified

	return in, nil
}

// Score weights for each history feature.
const (
	baseScore = 500

	depositMonthPoints = 10 // per distinct deposit month, trailing year

	noBouncePoints   = 60
	lowBouncePoints  = 20
	highBouncePoints = -80

	repaymentPoints    = 8
	maxRepaymentsScore = 10
	missedPenalty      = -40

	paidLoanPoints = 30
	maxPaidLoans   = 3
	defaultPenalty = -120

	incomeVerifiedPoints = 40
)

// Score maps history inputs to a credit score in [domain.ScoreMin,
// domain.ScoreMax]. Pure integer arithmetic; identical inputs always produce
// identical scores.
func Score(in domain.ScoreInputs) int {
	score := baseScore

	months := in.DepositMonths
	if months > 12 {
		months = 12
	}

	score += months * depositMonthPoints

	if in.WithdrawalAttempts > 0 {
		switch {
		case in.BouncedWithdrawals == 0:
			score += noBouncePoints
		case in.BouncedWithdrawals*10 <= in.WithdrawalAttempts: // <= 10% bounce rate
			score += lowBouncePoints
		case in.BouncedWithdrawals*10 >= in.WithdrawalAttempts*3: // >= 30% bounce rate
			score += highBouncePoints
		}
	}

	repayments := in.RepaymentsMade
	if repayments > maxRepaymentsScore {
		repayments = maxRepaymentsScore
	}

	score += repayments * repaymentPoints
	score += in.MissedPayments * missedPenalty

	paid := in.LoansPaid
	if paid > maxPaidLoans {
		paid = maxPaidLoans
	}

	score += paid * paidLoanPoints
	score += in.LoansDefaulted * defaultPenalty

	if in.IncomeVerified {
		score += incomeVerifiedPoints
	}

	if score < domain.ScoreMin {
		return domain.ScoreMin
	}

	if score > domain.ScoreMax {
		return domain.ScoreMax
	}

	return score
}
