// Package statsdelivery manages delivery layer of admin statistics.
package statsdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/middleware"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/jsonresponse"
	"github.com/DevMeza-lvl/api-transacciones/pkg/tokenpkg"
)

// Service provides service layer interface needed by stats delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package statsdelivery
type Service interface {
	SenderStats(ctx context.Context, actorEmail string) ([]domain.SenderStats, error)
}

// Handler facilitates stats delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns stats handler.
func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type statsData struct {
	Users []domain.SenderStats `json:"users"`
}

type statsResponse struct {
	Data statsData `json:"data,omitempty"`
}

// SenderStats handles http request to get per-user transfer statistics. Admin only.
func (h *Handler) SenderStats(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	stats, err := h.service.SenderStats(ctx, authPayload.Email)
	if err != nil {
		switch err {
		case domain.ErrForbidden:
			gctx.JSON(http.StatusForbidden, jsonresponse.Error(err))
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, statsResponse{Data: statsData{stats}})
}
