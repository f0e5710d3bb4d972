package loanservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/pkg/currencypkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/randompkg"
)

const testMissedThreshold = 3

func testProduct() domain.Product {
	return domain.Product{
		ID:            uuid.NewString(),
		Name:          "Business Loan",
		Tier:          domain.TierGold,
		Currency:      currencypkg.KES,
		AnnualRateBps: 1200,
		MinAmount:     10000,
		MaxAmount:     2000000,
		MinTermMonths: 6,
		MaxTermMonths: 24,
		Active:        true,
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
	}
}

func TestApply(t *testing.T) {
	userID := randompkg.Owner()
	product := testProduct()

	inactiveProduct := testProduct()
	inactiveProduct.Active = false

	goldScore := domain.CreditScore{UserID: userID, Score: 700, Tier: domain.TierGold}
	silverScore := domain.CreditScore{UserID: userID, Score: 600, Tier: domain.TierSilver}

	arg := domain.ApplyLoanParams{
		UserID:     userID,
		ProductID:  product.ID,
		Amount:     50000,
		TermMonths: 12,
		Purpose:    "inventory restock",
	}

	wantCreateParams := domain.CreateLoanParams{
		UserID:          userID,
		ProductID:       product.ID,
		Principal:       50000,
		AnnualRateBps:   1200,
		TermMonths:      12,
		MonthlyPayment:  4442,
		TotalPayment:    53304,
		RemainingAmount: 50000,
		Purpose:         "inventory restock",
	}

	wantLoan := domain.Loan{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       product.ID,
		Principal:       50000,
		AnnualRateBps:   1200,
		TermMonths:      12,
		MonthlyPayment:  4442,
		TotalPayment:    53304,
		RemainingAmount: 50000,
		Status:          domain.LoanPending,
	}

	testCases := []struct {
		name          string
		arg           domain.ApplyLoanParams
		buildStubs    func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer)
		checkResponse func(loan domain.Loan, err error)
	}{
		{
			name: "InvalidAmount",
			arg:  domain.ApplyLoanParams{UserID: userID, ProductID: product.ID, Amount: 0, TermMonths: 12},
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "ProductNotFound",
			arg:  arg,
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(domain.Product{}, domain.ErrProductNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrProductNotFound)
			},
		},
		{
			name: "ProductInactive",
			arg:  arg,
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(inactiveProduct, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrProductInactive)
			},
		},
		{
			name: "AmountBelowMinimum",
			arg:  domain.ApplyLoanParams{UserID: userID, ProductID: product.ID, Amount: 5000, TermMonths: 12},
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(product, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrAmountOutOfRange)
			},
		},
		{
			name: "TermTooLong",
			arg:  domain.ApplyLoanParams{UserID: userID, ProductID: product.ID, Amount: 50000, TermMonths: 36},
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(product, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrTermOutOfRange)
			},
		},
		{
			name: "TierNotEligible",
			arg:  arg,
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(product, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(silverScore, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, domain.ErrLoanNotEligible)
			},
		},
		{
			name: "ScorerError",
			arg:  arg,
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(product, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(domain.CreditScore{}, errorspkg.ErrInternal)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.Empty(t, loan)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
		{
			name: "OK",
			arg:  arg,
			buildStubs: func(repo *MockRepo, products *MockProductRepo, scorer *MockScorer) {
				products.EXPECT().Get(gomock.Any(), gomock.Eq(product.ID)).
					Times(1).
					Return(product, nil)
				scorer.EXPECT().Get(gomock.Any(), gomock.Eq(userID)).
					Times(1).
					Return(goldScore, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(wantCreateParams)).
					Times(1).
					Return(wantLoan, nil)
			},
			checkResponse: func(loan domain.Loan, err error) {
				require.NoError(t, err)
				require.Equal(t, wantLoan, loan)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			products := NewMockProductRepo(ctrl)
			scorer := NewMockScorer(ctrl)
			tc.buildStubs(repo, products, scorer)

			service := New(repo, products, scorer, testMissedThreshold)

			loan, err := service.Apply(context.Background(), tc.arg)
			tc.checkResponse(loan, err)
		})
	}
}

func TestApproveAndReject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loanID := uuid.NewString()

	repo := NewMockRepo(ctrl)
	products := NewMockProductRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	approved := domain.Loan{ID: loanID, Status: domain.LoanApproved}
	rejected := domain.Loan{ID: loanID, Status: domain.LoanRejected}

	repo.EXPECT().
		Transition(gomock.Any(), gomock.Eq(loanID), gomock.Eq(domain.LoanPending), gomock.Eq(domain.LoanApproved)).
		Times(1).
		Return(approved, nil)
	repo.EXPECT().
		Transition(gomock.Any(), gomock.Eq(loanID), gomock.Eq(domain.LoanPending), gomock.Eq(domain.LoanRejected)).
		Times(1).
		Return(rejected, nil)

	service := New(repo, products, scorer, testMissedThreshold)

	loan, err := service.Approve(context.Background(), loanID)
	require.NoError(t, err)
	require.Equal(t, approved, loan)

	loan, err = service.Reject(context.Background(), loanID)
	require.NoError(t, err)
	require.Equal(t, rejected, loan)
}

func TestDisburse(t *testing.T) {
	loanID := uuid.NewString()

	wantResult := domain.DisburseResult{
		Loan: domain.Loan{ID: loanID, Status: domain.LoanRepaying},
	}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.DisburseResult, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DisburseTx(gomock.Any(), gomock.Eq(loanID)).
					Times(1).
					Return(wantResult, nil)
			},
			checkResponse: func(res domain.DisburseResult, err error) {
				require.NoError(t, err)
				require.Equal(t, wantResult, res)
			},
		},
		{
			name: "WalletMissingLeavesLoanUntouched",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DisburseTx(gomock.Any(), gomock.Eq(loanID)).
					Times(1).
					Return(domain.DisburseResult{}, domain.ErrWalletNotFound)
			},
			checkResponse: func(res domain.DisburseResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrWalletNotFound)
			},
		},
		{
			name: "NotApproved",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DisburseTx(gomock.Any(), gomock.Eq(loanID)).
					Times(1).
					Return(domain.DisburseResult{}, domain.ErrInvalidStateTransition)
			},
			checkResponse: func(res domain.DisburseResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
			},
		},
		{
			name: "ConflictRetriedThenOK",
			buildStubs: func(repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().DisburseTx(gomock.Any(), gomock.Eq(loanID)).
						Return(domain.DisburseResult{}, domain.ErrConcurrencyConflict),
					repo.EXPECT().DisburseTx(gomock.Any(), gomock.Eq(loanID)).
						Return(wantResult, nil),
				)
			},
			checkResponse: func(res domain.DisburseResult, err error) {
				require.NoError(t, err)
				require.Equal(t, wantResult, res)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			products := NewMockProductRepo(ctrl)
			scorer := NewMockScorer(ctrl)
			tc.buildStubs(repo)

			service := New(repo, products, scorer, testMissedThreshold)

			res, err := service.Disburse(context.Background(), loanID)
			tc.checkResponse(res, err)
		})
	}
}

func TestRecordRepayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loanID := uuid.NewString()

	repo := NewMockRepo(ctrl)
	products := NewMockProductRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	wantResult := domain.RepaymentResult{
		Loan:             domain.Loan{ID: loanID, Status: domain.LoanRepaying, RemainingAmount: 46058},
		InterestPortion:  500,
		PrincipalPortion: 3942,
	}

	repo.EXPECT().RepayTx(gomock.Any(), gomock.Eq(loanID), gomock.Eq(int64(4442))).
		Times(1).
		Return(wantResult, nil)

	service := New(repo, products, scorer, testMissedThreshold)

	res, err := service.RecordRepayment(context.Background(), loanID, 4442)
	require.NoError(t, err)
	require.Equal(t, wantResult, res)

	_, err = service.RecordRepayment(context.Background(), loanID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRecordMissedPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loanID := uuid.NewString()

	repo := NewMockRepo(ctrl)
	products := NewMockProductRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	defaulted := domain.Loan{ID: loanID, Status: domain.LoanDefaulted, MissedPayments: testMissedThreshold}

	repo.EXPECT().
		MarkMissedPayment(gomock.Any(), gomock.Eq(loanID), gomock.Eq(int32(testMissedThreshold))).
		Times(1).
		Return(defaulted, nil)

	service := New(repo, products, scorer, testMissedThreshold)

	loan, err := service.RecordMissedPayment(context.Background(), loanID)
	require.NoError(t, err)
	require.Equal(t, defaulted, loan)
}

func TestProducts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	products := NewMockProductRepo(ctrl)
	scorer := NewMockScorer(ctrl)

	want := []domain.Product{testProduct()}

	products.EXPECT().ListActive(gomock.Any()).Times(1).Return(want, nil)

	service := New(repo, products, scorer, testMissedThreshold)

	got, err := service.Products(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}
