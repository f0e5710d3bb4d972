package domain

import (
	"errors"
	"time"
)

// ErrActionNotFound indicates that the improvement action is not in the catalog.
var ErrActionNotFound = errors.New("improvement action not found")

// ActionVerifyIncome is the catalog action whose completion feeds the
// income-verification scoring flag.
const ActionVerifyIncome = "verify_income"

// ImprovementAction is an advisory catalog entry with the user's completion
// state. The catalog (title, impact, difficulty, timeframe) is configuration;
// Completed is the only user-mutable field.
type ImprovementAction struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Impact     int       `json:"impact"` // points
	Difficulty string    `json:"difficulty"`
	Timeframe  string    `json:"timeframe"`
	Completed  bool      `json:"completed"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// ImprovementPlan is the advisory read projection. All derived fields are
// recomputed on every read.
type ImprovementPlan struct {
	Score              CreditScore         `json:"score"`
	Actions            []ImprovementAction `json:"actions"`
	PendingImpactTotal int                 `json:"pending_impact_total"`
	PointsToNextTier   int                 `json:"points_to_next_tier"`
	PointsStillNeeded  int                 `json:"points_still_needed"`
	ProgressToNextTier int                 `json:"progress_to_next_tier"` // percent, capped at 100
}
