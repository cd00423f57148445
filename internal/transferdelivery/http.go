// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/middleware"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/jsonresponse"
	"github.com/DevMeza-lvl/api-transacciones/pkg/tokenpkg"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, senderEmail string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, actorEmail string, id int64) (domain.Transfer, error)
	List(ctx context.Context, actorEmail string, arg domain.ListTransfersParams) ([]domain.Transfer, error)
	ListForExport(ctx context.Context, actorEmail string, dateFrom, dateTo time.Time) ([]domain.Transfer, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type createRequest struct {
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
	Amount        string `json:"amount" binding:"required,amount"`
	Description   string `json:"description" binding:"omitempty,max=500"`
}

type data struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to create a transfer between two users.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateTransferParams{
		ReceiverEmail: req.ReceiverEmail,
		Amount:        req.Amount,
		Description:   req.Description,
	}

	result, err := h.service.Transfer(ctx, authPayload.Email, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case
			domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrAmountTooLarge,
			domain.ErrReceiverNotFound,
			domain.ErrSelfTransfer,
			domain.ErrInsufficientBalance,
			domain.ErrDailyLimitExceeded,
			domain.ErrDuplicateTransfer:
			gctx.JSON(http.StatusUnprocessableEntity, jsonresponse.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{result}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type transferData struct {
	Transfer domain.Transfer `json:"transfer"`
}

type transferResponse struct {
	Data transferData `json:"data,omitempty"`
}

// Get handles http request to get one transfer.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transfer, err := h.service.Get(ctx, authPayload.Email, req.ID)
	if err != nil {
		if err == domain.ErrTransferNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, transferResponse{Data: transferData{transfer}})
}

type listRequest struct {
	DateFrom time.Time `form:"date_from" time_format:"2006-01-02" time_utc:"1"`
	DateTo   time.Time `form:"date_to" time_format:"2006-01-02" time_utc:"1"`
	UserID   int64     `form:"user_id" binding:"omitempty,min=1"`
	PageID   int32     `form:"page_id" binding:"required,min=1"`
	PageSize int32     `form:"page_size" binding:"required,min=1,max=100"`
}

type listData struct {
	Transfers []domain.Transfer `json:"transfers"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list transfers with filters and pagination.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.ListTransfersParams{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		UserID:   req.UserID,
		Limit:    req.PageSize,
		Offset:   (req.PageID - 1) * req.PageSize,
	}

	transfers, err := h.service.List(ctx, authPayload.Email, arg)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, listResponse{Data: listData{transfers}})
}

type exportRequest struct {
	DateFrom  time.Time `form:"date_from" time_format:"2006-01-02" time_utc:"1"`
	DateTo    time.Time `form:"date_to" time_format:"2006-01-02" time_utc:"1"`
	Delimiter string    `form:"delimiter" binding:"omitempty,oneof=; 0x2C"`
}

var csvHeader = []string{"id", "sender_id", "receiver_id", "amount", "description", "status", "transfer_date", "created_at"}

// ExportCSV handles http request to download transfers as a CSV file.
func (h *Handler) ExportCSV(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req exportRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	delimiter := ';'
	if req.Delimiter == "," {
		delimiter = ','
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transfers, err := h.service.ListForExport(ctx, authPayload.Email, req.DateFrom, req.DateTo)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	filename := fmt.Sprintf("transfers_%s.csv", time.Now().Format("2006-01-02_15-04-05"))

	gctx.Header("Content-Type", "text/csv")
	gctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	w := csv.NewWriter(gctx.Writer)
	w.Comma = delimiter

	records := [][]string{csvHeader}
	for _, t := range transfers {
		records = append(records, []string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.SenderID, 10),
			strconv.FormatInt(t.ReceiverID, 10),
			t.Amount,
			t.Description,
			t.Status,
			t.TransferDate.Format("2006-01-02"),
			t.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := w.WriteAll(records); err != nil {
		l.Error().Err(err).Send()
	}
}
