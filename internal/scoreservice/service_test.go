package scoreservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/randompkg"
)

func TestScore(t *testing.T) {
	testCases := []struct {
		name string
		in   domain.ScoreInputs
		want int
	}{
		{
			name: "EmptyHistory",
			in:   domain.ScoreInputs{},
			want: 500,
		},
		{
			name: "SteadySaverNoLoans",
			in: domain.ScoreInputs{
				DepositMonths:      12,
				WithdrawalAttempts: 20,
				BouncedWithdrawals: 0,
			},
			// 500 + 120 + 60
			want: 680,
		},
		{
			name: "DepositMonthsCappedAtTwelve",
			in: domain.ScoreInputs{
				DepositMonths: 30,
			},
			want: 620,
		},
		{
			name: "LowBounceRate",
			in: domain.ScoreInputs{
				WithdrawalAttempts: 20,
				BouncedWithdrawals: 2,
			},
			want: 520,
		},
		{
			name: "HighBounceRate",
			in: domain.ScoreInputs{
				WithdrawalAttempts: 10,
				BouncedWithdrawals: 4,
			},
			want: 420,
		},
		{
			name: "GoodBorrower",
			in: domain.ScoreInputs{
				DepositMonths:      12,
				WithdrawalAttempts: 10,
				BouncedWithdrawals: 0,
				RepaymentsMade:     12,
				LoansPaid:          1,
				IncomeVerified:     true,
			},
			// 500 + 120 + 60 + 80 + 30 + 40
			want: 830,
		},
		{
			name: "ClampedAtMax",
			in: domain.ScoreInputs{
				DepositMonths:      12,
				WithdrawalAttempts: 10,
				BouncedWithdrawals: 0,
				RepaymentsMade:     20,
				LoansPaid:          5,
				IncomeVerified:     true,
			},
			want: domain.ScoreMax,
		},
		{
			name: "ClampedAtMin",
			in: domain.ScoreInputs{
				MissedPayments: 3,
				LoansDefaulted: 2,
			},
			want: domain.ScoreMin,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.in)
			if got != tc.want {
				t.Errorf("Score(%+v) = %d, want %d", tc.in, got, tc.want)
			}

			// Identical inputs always produce identical scores.
			require.Equal(t, got, Score(tc.in))
			require.GreaterOrEqual(t, got, domain.ScoreMin)
			require.LessOrEqual(t, got, domain.ScoreMax)
		})
	}
}

func TestGet(t *testing.T) {
	userID := randompkg.Owner()

	cached := domain.CreditScore{
		UserID:     userID,
		Score:      680,
		Tier:       domain.TierGold,
		ComputedAt: time.Now().Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name          string
		buildStubs    func(transactions *MockTransactionStats, loans *MockLoanStats, progress *MockProgressRepo, cache *MockCache)
		checkResponse func(score domain.CreditScore, err error)
	}{
		{
			name: "CacheHit",
			buildStubs: func(transactions *MockTransactionStats, loans *MockLoanStats, progress *MockProgressRepo, cache *MockCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(cached, true, nil)
				transactions.EXPECT().DepositMonths(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(score domain.CreditScore, err error) {
				require.NoError(t, err)
				require.Equal(t, cached, score)
			},
		},
		{
			name: "CacheMissComputes",
			buildStubs: func(transactions *MockTransactionStats, loans *MockLoanStats, progress *MockProgressRepo, cache *MockCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(domain.CreditScore{}, false, nil)
				transactions.EXPECT().DepositMonths(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(12, nil)
				transactions.EXPECT().WithdrawalStats(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(20, 0, nil)
				loans.EXPECT().Stats(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(domain.LoanStats{}, nil)
				progress.EXPECT().IsCompleted(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ActionVerifyIncome)).
					Times(1).
					Return(false, nil)
				cache.EXPECT().Set(gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil)
			},
			checkResponse: func(score domain.CreditScore, err error) {
				require.NoError(t, err)
				require.Equal(t, 680, score.Score)
				require.Equal(t, domain.TierGold, score.Tier)
				require.Equal(t, userID, score.UserID)
				require.WithinDuration(t, time.Now(), score.ComputedAt, time.Minute)
			},
		},
		{
			name: "CacheErrorFallsThrough",
			buildStubs: func(transactions *MockTransactionStats, loans *MockLoanStats, progress *MockProgressRepo, cache *MockCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(domain.CreditScore{}, false, errors.New("redis down"))
				transactions.EXPECT().DepositMonths(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(0, nil)
				transactions.EXPECT().WithdrawalStats(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(0, 0, nil)
				loans.EXPECT().Stats(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(domain.LoanStats{}, nil)
				progress.EXPECT().IsCompleted(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ActionVerifyIncome)).
					Times(1).
					Return(false, nil)
				cache.EXPECT().Set(gomock.Any(), gomock.Any()).
					Times(1).
					Return(errors.New("redis down"))
			},
			checkResponse: func(score domain.CreditScore, err error) {
				// Cache failures never fail the read.
				require.NoError(t, err)
				require.Equal(t, 500, score.Score)
				require.Equal(t, domain.TierBronze, score.Tier)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactions := NewMockTransactionStats(ctrl)
			loans := NewMockLoanStats(ctrl)
			progress := NewMockProgressRepo(ctrl)
			cache := NewMockCache(ctrl)
			tc.buildStubs(transactions, loans, progress, cache)

			service := New(transactions, loans, progress, cache)

			score, err := service.Get(context.Background(), userID)
			tc.checkResponse(score, err)
		})
	}
}

func TestRefreshGatherError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := randompkg.Owner()

	transactions := NewMockTransactionStats(ctrl)
	loans := NewMockLoanStats(ctrl)
	progress := NewMockProgressRepo(ctrl)
	cache := NewMockCache(ctrl)

	wantErr := errors.New("db down")

	transactions.EXPECT().DepositMonths(gomock.Any(), gomock.Eq(userID)).
		Times(1).
		Return(0, wantErr)
	cache.EXPECT().Set(gomock.Any(), gomock.Any()).Times(0)

	service := New(transactions, loans, progress, cache)

	_, err := service.Refresh(context.Background(), userID)
	require.ErrorIs(t, err, wantErr)
}
