// Package scoredelivery manages delivery layer of credit scores.
package scoredelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/middleware"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/tokenpkg"
	"github.com/kifaa/ledger-core/pkg/web"
)

// Service provides service layer interface needed by score delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package scoredelivery
type Service interface {
	Get(ctx context.Context, userID string) (domain.CreditScore, error)
	Refresh(ctx context.Context, userID string) (domain.CreditScore, error)
}

// Handler facilitates score delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns score handler.
func NewHandler(ss Service) Handler {
	return Handler{service: ss}
}

type scoreData struct {
	Score domain.CreditScore `json:"score"`
}

// Get handles http request to read the user's credit score.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	score, err := h.service.Get(ctx, authPayload.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: scoreData{score}})
}

// Refresh handles http request to recompute the user's credit score.
func (h *Handler) Refresh(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	score, err := h.service.Refresh(ctx, authPayload.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: scoreData{score}})
}
