// Package advisorydelivery manages delivery layer of the improvement plan.
package advisorydelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/middleware"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/tokenpkg"
	"github.com/kifaa/ledger-core/pkg/web"
)

// Service provides service layer interface needed by advisory delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package advisorydelivery
type Service interface {
	Plan(ctx context.Context, userID string) (domain.ImprovementPlan, error)
	Toggle(ctx context.Context, userID, actionID string) (domain.ImprovementAction, error)
}

// Handler facilitates advisory delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns advisory handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type planData struct {
	Plan domain.ImprovementPlan `json:"plan"`
}

// Plan handles http request to read the user's improvement plan.
func (h *Handler) Plan(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	plan, err := h.service.Plan(ctx, authPayload.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: planData{plan}})
}

type toggleURI struct {
	ID string `uri:"id" binding:"required"`
}

type actionData struct {
	Action domain.ImprovementAction `json:"action"`
}

// Toggle handles http request to flip an improvement action's completion.
func (h *Handler) Toggle(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri toggleURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	action, err := h.service.Toggle(ctx, authPayload.Username, uri.ID)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: actionData{action}})
}
