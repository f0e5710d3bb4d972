package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/middleware"
	"github.com/kifaa/ledger-core/pkg/currencypkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/randompkg"
	"github.com/kifaa/ledger-core/pkg/tokenpkg"
	"github.com/kifaa/ledger-core/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, handler Handler, tokenMaker tokenpkg.Maker) *gin.Engine {
	t.Helper()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency", currencypkg.ValidCurrency)
	}

	engine := gin.New()
	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/wallets/deposit", handler.Deposit)
	authRoutes.POST("/wallets/withdraw", handler.Withdraw)
	authRoutes.POST("/transfers", handler.Transfer)
	authRoutes.GET("/transactions", handler.ListTransactions)

	return engine
}

func TestDeposit(t *testing.T) {
	username := randompkg.Owner()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	wantResult := domain.MoveResult{
		Transaction: domain.Transaction{
			ID:       uuid.NewString(),
			Type:     domain.TransactionDeposit,
			Amount:   500,
			Currency: currencypkg.KES,
			Status:   domain.TransactionCommitted,
		},
		Wallet: domain.Wallet{
			ID:       uuid.NewString(),
			OwnerID:  username,
			Currency: currencypkg.KES,
			Balance:  1500,
			Status:   domain.WalletOpen,
		},
	}

	type requestBody struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: requestBody{Amount: 500, Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(wantResult, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "MissingAmount",
			requestBody: requestBody{Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name:        "NegativeAmount",
			requestBody: requestBody{Amount: -500, Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be greater than 0",
		},
		{
			name:        "UnsupportedCurrency",
			requestBody: requestBody{Amount: 500, Currency: "XYZ"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Currency is not a supported currency",
		},
		{
			name:        "WalletNotFound",
			requestBody: requestBody{Amount: 500, Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.MoveResult{}, domain.ErrWalletNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrWalletNotFound.Error(),
		},
		{
			name:        "WalletClosed",
			requestBody: requestBody{Amount: 500, Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.MoveResult{}, domain.ErrWalletClosed)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrWalletClosed.Error(),
		},
		{
			name:        "InternalError",
			requestBody: requestBody{Amount: 500, Currency: currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.MoveResult{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newTestServer(t, NewHandler(service), tokenMaker)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/wallets/deposit", bytes.NewReader(body))
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, authType, username, duration))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}

func TestWithdraw(t *testing.T) {
	username := randompkg.Owner()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	testCases := []struct {
		name           string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.MoveResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InsufficientBalance",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(username), gomock.Eq(int64(500)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.MoveResult{}, domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientBalance.Error(),
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newTestServer(t, NewHandler(service), tokenMaker)

			body, err := json.Marshal(gin.H{"amount": 500, "currency": currencypkg.KES})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/wallets/withdraw", bytes.NewReader(body))
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, username, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}

func TestTransfer(t *testing.T) {
	username := randompkg.Owner()
	recipientWalletID := uuid.NewString()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: gin.H{"recipient_id": recipientWalletID, "amount": 300, "currency": currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(recipientWalletID), gomock.Eq(int64(300)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "MissingRecipient",
			requestBody: gin.H{"amount": 300, "currency": currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "RecipientID field is required",
		},
		{
			name:        "InvalidRecipient",
			requestBody: gin.H{"recipient_id": recipientWalletID, "amount": 300, "currency": currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(recipientWalletID), gomock.Eq(int64(300)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrInvalidRecipient)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidRecipient.Error(),
		},
		{
			name:        "CurrencyMismatch",
			requestBody: gin.H{"recipient_id": recipientWalletID, "amount": 300, "currency": currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(recipientWalletID), gomock.Eq(int64(300)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrCurrencyMismatch)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrCurrencyMismatch.Error(),
		},
		{
			name:        "ConcurrencyConflict",
			requestBody: gin.H{"recipient_id": recipientWalletID, "amount": 300, "currency": currencypkg.KES},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(recipientWalletID), gomock.Eq(int64(300)), gomock.Eq(currencypkg.KES), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrConcurrencyConflict)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrConcurrencyConflict.Error(),
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newTestServer(t, NewHandler(service), tokenMaker)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, username, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}

func TestListTransactions(t *testing.T) {
	username := randompkg.Owner()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		ListTransactions(gomock.Any(), gomock.Eq(username), gomock.Eq(int32(20)), gomock.Eq(int32(1))).
		Times(1).
		Return([]domain.Transaction{}, nil)

	server := newTestServer(t, NewHandler(service), tokenMaker)

	req := httptest.NewRequest(http.MethodGet, "/transactions?page_id=1&page_size=20", nil)
	require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, username, time.Minute))

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
}
