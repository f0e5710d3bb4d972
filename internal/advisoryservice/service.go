// Package advisoryservice manages business logic layer of the improvement
// plan advisory.
package advisoryservice

import (
	"context"

	"github.com/kifaa/ledger-core/internal/domain"
)

// Repo provides data access layer interface needed by advisory service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package advisoryservice
type Repo interface {
	ListForUser(ctx context.Context, userID string) ([]domain.ImprovementAction, error)
	Toggle(ctx context.Context, userID, actionID string) (domain.ImprovementAction, error)
}

// Scorer provides the credit score the plan projection is anchored to.
type Scorer interface {
	Get(ctx context.Context, userID string) (domain.CreditScore, error)
}

// Service facilitates advisory service layer logic.
type Service struct {
	repo   Repo
	scorer Scorer
}

// New returns advisory service struct to manage improvement plan logic.
func New(ar Repo, sc Scorer) *Service {
	return &Service{
		repo:   ar,
		scorer: sc,
	}
}

// Plan builds the improvement plan projection. All derived values are
// recomputed on every read; nothing is cached.
func (s *Service) Plan(ctx context.Context, userID string) (domain.ImprovementPlan, error) {
	var plan domain.ImprovementPlan

	actions, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return plan, err
	}

	score, err := s.scorer.Get(ctx, userID)
	if err != nil {
		return plan, err
	}

	plan.Score = score
	plan.Actions = actions

	for _, a := range actions {
		if !a.Completed {
			plan.PendingImpactTotal += a.Impact
		}
	}

	points, ok := domain.PointsToNextTier(score.Score)
	if !ok {
		// Already in the top tier.
		plan.ProgressToNextTier = 100
		return plan, nil
	}

	plan.PointsToNextTier = points

	progress := plan.PendingImpactTotal * 100 / points
	if progress > 100 {
		progress = 100
	}

	plan.ProgressToNextTier = progress

	if needed := points - plan.PendingImpactTotal; needed > 0 {
		plan.PointsStillNeeded = needed
	}

	return plan, nil
}

// Toggle flips the completion state of the given action for the user.
func (s *Service) Toggle(ctx context.Context, userID, actionID string) (domain.ImprovementAction, error) {
	return s.repo.Toggle(ctx, userID, actionID)
}
