package advisoryservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/randompkg"
)

func testActions() []domain.ImprovementAction {
	return []domain.ImprovementAction{
		{
			ID:         domain.ActionVerifyIncome,
			Title:      "Verify your income",
			Impact:     40,
			Difficulty: "easy",
			Timeframe:  "1 day",
			Completed:  false,
		},
		{
			ID:         "regular_deposits",
			Title:      "Make a deposit every month",
			Impact:     30,
			Difficulty: "medium",
			Timeframe:  "3 months",
			Completed:  true,
		},
		{
			ID:         "avoid_bounces",
			Title:      "Keep withdrawals within your balance",
			Impact:     25,
			Difficulty: "easy",
			Timeframe:  "1 month",
			Completed:  false,
		},
	}
}

func TestPlan(t *testing.T) {
	userID := randompkg.Owner()
	actions := testActions()

	silverScore := domain.CreditScore{UserID: userID, Score: 600, Tier: domain.TierSilver}
	nearGoldScore := domain.CreditScore{UserID: userID, Score: 660, Tier: domain.TierSilver}
	platinumScore := domain.CreditScore{UserID: userID, Score: 800, Tier: domain.TierPlatinum}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo, scorer *MockScorer)
		checkResponse func(plan domain.ImprovementPlan, err error)
	}{
		{
			name: "PendingImpactBelowGap",
			buildStubs: func(repo *MockRepo, scorer *MockScorer) {
				repo.EXPECT().ListForUser(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(actions, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(silverScore, nil)
			},
			checkResponse: func(plan domain.ImprovementPlan, err error) {
				require.NoError(t, err)
				require.Equal(t, silverScore, plan.Score)
				require.Equal(t, actions, plan.Actions)
				// Only the two uncompleted actions count.
				require.Equal(t, 65, plan.PendingImpactTotal)
				require.Equal(t, 70, plan.PointsToNextTier)
				require.Equal(t, 5, plan.PointsStillNeeded)
				require.Equal(t, 92, plan.ProgressToNextTier)
			},
		},
		{
			name: "PendingImpactCoversGap",
			buildStubs: func(repo *MockRepo, scorer *MockScorer) {
				repo.EXPECT().ListForUser(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(actions, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(nearGoldScore, nil)
			},
			checkResponse: func(plan domain.ImprovementPlan, err error) {
				require.NoError(t, err)
				require.Equal(t, 65, plan.PendingImpactTotal)
				require.Equal(t, 10, plan.PointsToNextTier)
				require.Equal(t, 0, plan.PointsStillNeeded)
				require.Equal(t, 100, plan.ProgressToNextTier)
			},
		},
		{
			name: "TopTier",
			buildStubs: func(repo *MockRepo, scorer *MockScorer) {
				repo.EXPECT().ListForUser(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(actions, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(platinumScore, nil)
			},
			checkResponse: func(plan domain.ImprovementPlan, err error) {
				require.NoError(t, err)
				require.Equal(t, 0, plan.PointsToNextTier)
				require.Equal(t, 0, plan.PointsStillNeeded)
				require.Equal(t, 100, plan.ProgressToNextTier)
			},
		},
		{
			name: "RepoError",
			buildStubs: func(repo *MockRepo, scorer *MockScorer) {
				repo.EXPECT().ListForUser(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
				scorer.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(plan domain.ImprovementPlan, err error) {
				require.Empty(t, plan)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			scorer := NewMockScorer(ctrl)
			tc.buildStubs(repo, scorer)

			service := New(repo, scorer)

			plan, err := service.Plan(context.Background(), userID)
			tc.checkResponse(plan, err)
		})
	}
}

func TestToggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := randompkg.Owner()

	repo := NewMockRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	completed := domain.ImprovementAction{ID: domain.ActionVerifyIncome, Completed: true}
	reverted := domain.ImprovementAction{ID: domain.ActionVerifyIncome, Completed: false}

	gomock.InOrder(
		repo.EXPECT().Toggle(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ActionVerifyIncome)).
			Return(completed, nil),
		repo.EXPECT().Toggle(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ActionVerifyIncome)).
			Return(reverted, nil),
	)

	service := New(repo, scorer)

	action, err := service.Toggle(context.Background(), userID, domain.ActionVerifyIncome)
	require.NoError(t, err)
	require.True(t, action.Completed)

	// A second toggle reverts the first.
	action, err = service.Toggle(context.Background(), userID, domain.ActionVerifyIncome)
	require.NoError(t, err)
	require.False(t, action.Completed)
}

func TestToggleUnknownAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := randompkg.Owner()

	repo := NewMockRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	repo.EXPECT().Toggle(gomock.Any(), gomock.Eq(userID), gomock.Eq("unknown")).
		Times(1).
		Return(domain.ImprovementAction{}, domain.ErrActionNotFound)

	service := New(repo, scorer)

	_, err := service.Toggle(context.Background(), userID, "unknown")
	require.ErrorIs(t, err, domain.ErrActionNotFound)
}
