// Package ledgerdelivery manages delivery layer of money movement.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/middleware"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/tokenpkg"
	"github.com/kifaa/ledger-core/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, userID string, amount int64, currency, description string) (domain.MoveResult, error)
	Withdraw(ctx context.Context, userID string, amount int64, currency, description string) (domain.MoveResult, error)
	Transfer(ctx context.Context, senderID, recipientWalletID string, amount int64, currency, description string) (domain.TransferResult, error)
	ListTransactions(ctx context.Context, userID string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(ls Service) Handler {
	return Handler{service: ls}
}

type moveRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,currency"`
	Description string `json:"description"`
}

type moveData struct {
	Transaction domain.Transaction `json:"transaction"`
	Wallet      domain.Wallet      `json:"wallet"`
}

// Deposit handles http request to deposit funds into the user's wallet.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req moveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Deposit(ctx, authPayload.Username, req.Amount, req.Currency, req.Description)
	if err != nil {
		respondMoveError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: moveData{result.Transaction, result.Wallet}})
}

// Withdraw handles http request to withdraw funds from the user's wallet.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req moveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Withdraw(ctx, authPayload.Username, req.Amount, req.Currency, req.Description)
	if err != nil {
		respondMoveError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: moveData{result.Transaction, result.Wallet}})
}

type transferRequest struct {
	// RecipientID is the recipient wallet id.
	RecipientID string `json:"recipient_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,currency"`
	Description string `json:"description"`
}

type transferData struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// Transfer handles http request to transfer funds to another wallet.
// A missing recipient_id fails binding before the service is called.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Transfer(ctx, authPayload.Username, req.RecipientID, req.Amount, req.Currency, req.Description)
	if err != nil {
		respondMoveError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transferData{result}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type transactionsData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// ListTransactions handles http request to list the user's transactions.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.ListTransactions(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionsData{transactions}})
}

func respondMoveError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidRecipient):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrWalletNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrWalletClosed):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	case errors.Is(err, domain.ErrConcurrencyConflict):
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return "invalid request"
}
