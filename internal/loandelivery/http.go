// Package loandelivery manages delivery layer of loans and the product
// catalog.
package loandelivery

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

// Service provides service layer interface needed by loan delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package loandelivery
type Service interface {
	Apply(ctx context.Context, arg domain.ApplyLoanParams) (domain.Loan, error)
	Approve(ctx context.Context, loanID string) (domain.Loan, error)
	Reject(ctx context.Context, loanID string) (domain.Loan, error)
	Disburse(ctx context.Context, loanID string) (domain.DisburseResult, error)
	RecordRepayment(ctx context.Context, loanID string, amount int64) (domain.RepaymentResult, error)
	RecordMissedPayment(ctx context.Context, loanID string) (domain.Loan, error)
	Get(ctx context.Context, loanID string) (domain.Loan, error)
	List(ctx context.Context, userID string) ([]domain.LoanWithProduct, error)
	Products(ctx context.Context) ([]domain.Product, error)
}

// Handler facilitates loan delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns loan handler.
func NewHandler(ls Service) Handler {
	return Handler{service: ls}
}

type applyRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	TermMonths int32  `json:"term_months" binding:"required,min=1"`
	Purpose    string `json:"purpose"`
}

type loanData struct {
	Loan domain.Loan `json:"loan"`
}

// Apply handles http request to apply for a loan.
func (h *Handler) Apply(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req applyRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	loan, err := h.service.Apply(ctx, domain.ApplyLoanParams{
		UserID:     authPayload.Username,
		ProductID:  req.ProductID,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
	})
	if err != nil {
		respondLoanError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: loanData{loan}})
}

type loanURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Approve handles http request to approve a pending loan.
func (h *Handler) Approve(gctx *gin.Context) {
	h.decide(gctx, h.service.Approve)
}

// Reject handles http request to reject a pending loan.
func (h *Handler) Reject(gctx *gin.Context) {
	h.decide(gctx, h.service.Reject)
}

func (h *Handler) decide(gctx *gin.Context, decision func(ctx context.Context, loanID string) (domain.Loan, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri loanURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	loan, err := decision(ctx, uri.ID)
	if err != nil {
		respondLoanError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: loanData{loan}})
}

type disburseData struct {
	Loan    domain.Loan       `json:"loan"`
	Deposit domain.MoveResult `json:"deposit"`
}

// Disburse handles http request to disburse an approved loan into the
// borrower's wallet.
func (h *Handler) Disburse(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri loanURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	result, err := h.service.Disburse(ctx, uri.ID)
	if err != nil {
		respondLoanError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: disburseData{result.Loan, result.Deposit}})
}

type repayRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type repaymentData struct {
	Loan             domain.Loan       `json:"loan"`
	Withdrawal       domain.MoveResult `json:"withdrawal"`
	InterestPortion  int64             `json:"interest_portion"`
	PrincipalPortion int64             `json:"principal_portion"`
}

// Repay handles http request to record a loan repayment.
func (h *Handler) Repay(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri loanURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req repayRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	result, err := h.service.RecordRepayment(ctx, uri.ID, req.Amount)
	if err != nil {
		respondLoanError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: repaymentData{
		Loan:             result.Loan,
		Withdrawal:       result.Withdrawal,
		InterestPortion:  result.InterestPortion,
		PrincipalPortion: result.PrincipalPortion,
	}})
}

// MissedPayment handles http request from the billing collaborator to record
// a missed payment.
func (h *Handler) MissedPayment(gctx *gin.Context) {
	h.decide(gctx, h.service.RecordMissedPayment)
}

type loansData struct {
	Loans []domain.LoanWithProduct `json:"loans"`
}

// List handles http request to list the user's loans.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	loans, err := h.service.List(ctx, authPayload.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: loansData{loans}})
}

type productsData struct {
	Products []domain.Product `json:"products"`
}

// Products handles http request to list the active product catalog.
func (h *Handler) Products(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	products, err := h.service.Products(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: productsData{products}})
}

func respondLoanError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrWalletNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrConcurrencyConflict):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrLoanNotEligible),
		errors.Is(err, domain.ErrAmountOutOfRange),
		errors.Is(err, domain.ErrTermOutOfRange),
		errors.Is(err, domain.ErrProductInactive),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrWalletClosed):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
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
