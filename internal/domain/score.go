package domain

import "time"

// Credit score bounds.
const (
	ScoreMin = 300
	ScoreMax = 850
)

// Tier is a named eligibility bracket derived from the credit score.
type Tier string

// Tiers in ascending order of eligibility.
const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// tierFloors holds the ordered lower score threshold of each tier.
var tierFloors = []struct {
	Tier Tier
	Min  int
}{
	{TierBronze, ScoreMin},
	{TierSilver, 580},
	{TierGold, 670},
	{TierPlatinum, 740},
}

// TierFromScore maps a score to its tier via the fixed ordered thresholds.
func TierFromScore(score int) Tier {
	tier := tierFloors[0].Tier

	for _, t := range tierFloors {
		if score >= t.Min {
			tier = t.Tier
		}
	}

	return tier
}

// PointsToNextTier returns how many points separate the score from the next
// tier threshold. It returns ok=false for scores already in the top tier.
func PointsToNextTier(score int) (points int, ok bool) {
	for _, t := range tierFloors {
		if score < t.Min {
			return t.Min - score, true
		}
	}

	return 0, false
}

// AtLeast reports whether the tier is equal to or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.rank() >= other.rank()
}

func (t Tier) rank() int {
	for i, f := range tierFloors {
		if f.Tier == t {
			return i
		}
	}

	return -1
}

// CreditScore is a derived projection; it is recomputed and replaced, never
// mutated in place.
type CreditScore struct {
	UserID     string    `json:"user_id"`
	Score      int       `json:"score"`
	Tier       Tier      `json:"tier"`
	ComputedAt time.Time `json:"computed_at"`
}

// ScoreInputs aggregates the transaction and loan history features the
// scoring function is computed over.
type ScoreInputs struct {
	// DepositMonths is the number of distinct months with at least one
	// committed deposit over the trailing twelve months.
	DepositMonths int
	// WithdrawalAttempts counts all withdrawal attempts, committed or failed.
	WithdrawalAttempts int
	// BouncedWithdrawals counts withdrawal attempts rejected for
	// insufficient balance.
	BouncedWithdrawals int
	RepaymentsMade     int
	MissedPayments     int
	LoansPaid          int
	LoansDefaulted     int
	IncomeVerified     bool
}
