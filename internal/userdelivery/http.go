// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/middleware"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/jsonresponse"
	"github.com/DevMeza-lvl/api-transacciones/pkg/tokenpkg"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, name, email, password, initialBalance string) (domain.UserWithoutPassword, error)
	CheckPassword(ctx context.Context, email, pass string) (domain.UserWithoutPassword, error)
	Profile(ctx context.Context, email string) (domain.UserWithoutPassword, error)
	GetUser(ctx context.Context, actorEmail string, id int64) (domain.UserWithoutPassword, error)
	List(ctx context.Context, actorEmail, search string, pageSize, pageID int32) ([]domain.UserWithoutPassword, error)
	Update(ctx context.Context, actorEmail string, arg domain.UpdateUserParams, password *string) (domain.UserWithoutPassword, error)
	Delete(ctx context.Context, actorEmail string, id int64) error
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service       Service
	tokenMaker    tokenpkg.Maker
	tokenDuration time.Duration
}

// NewHandler returns user handler.
func NewHandler(us Service, tm tokenpkg.Maker, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       us,
		tokenMaker:    tm,
		tokenDuration: tokenDuration,
	}
}

type userData struct {
	User domain.UserWithoutPassword `json:"user"`
}

type userResponse struct {
	AccessToken string   `json:"access_token,omitempty"`
	Data        userData `json:"data,omitempty"`
}

type createRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	InitialBalance string `json:"initial_balance" binding:"required,balance"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	createdUser, err := h.service.Create(ctx, req.Name, req.Email, req.Password, req.InitialBalance)
	if err != nil {
		switch err {
		case domain.ErrEmailAlreadyExists, domain.ErrInvalidAmount, domain.ErrNegativeAmount:
			gctx.JSON(http.StatusUnprocessableEntity, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	accessToken, _, err := h.tokenMaker.CreateToken(createdUser.Email, h.tokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, userResponse{
		AccessToken: accessToken,
		Data:        userData{createdUser},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles http request to authenticate a user and issue an access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	user, err := h.service.CheckPassword(ctx, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound, domain.ErrWrongPassword:
			gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(domain.ErrWrongPassword))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	accessToken, _, err := h.tokenMaker.CreateToken(user.Email, h.tokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, userResponse{
		AccessToken: accessToken,
		Data:        userData{user},
	})
}

// Me handles http request to get the authenticated user's profile.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	user, err := h.service.Profile(ctx, authPayload.Email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, userResponse{Data: userData{user}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get one user. Admin only.
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

	user, err := h.service.GetUser(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeAdminError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, userResponse{Data: userData{user}})
}

type listRequest struct {
	Search   string `form:"search"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type usersData struct {
	Users []domain.UserWithoutPassword `json:"users"`
}

type usersResponse struct {
	Data usersData `json:"data,omitempty"`
}

// List handles http request to list users. Admin only.
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

	users, err := h.service.List(ctx, authPayload.Email, req.Search, req.PageSize, req.PageID)
	if err != nil {
		writeAdminError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, usersResponse{Data: usersData{users}})
}

type updateRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=255"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Password       *string `json:"password" binding:"omitempty,min=6"`
	InitialBalance *string `json:"initial_balance" binding:"omitempty,balance"`
}

// Update handles http request to update a user. Admin only.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.UpdateUserParams{
		ID:             uri.ID,
		Name:           req.Name,
		Email:          req.Email,
		InitialBalance: req.InitialBalance,
	}

	user, err := h.service.Update(ctx, authPayload.Email, arg, req.Password)
	if err != nil {
		switch err {
		case domain.ErrEmailAlreadyExists, domain.ErrInvalidAmount, domain.ErrNegativeAmount:
			gctx.JSON(http.StatusUnprocessableEntity, jsonresponse.Error(err))
			return
		}

		writeAdminError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, userResponse{Data: userData{user}})
}

// Delete handles http request to delete a user. Admin only.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	if err := h.service.Delete(ctx, authPayload.Email, req.ID); err != nil {
		switch err {
		case domain.ErrUserHasPendingTransfers, domain.ErrUserHasTransfers:
			gctx.JSON(http.StatusUnprocessableEntity, jsonresponse.Error(err))
			return
		}

		writeAdminError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Message("user deleted"))
}

func writeAdminError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrForbidden:
		gctx.JSON(http.StatusForbidden, jsonresponse.Error(err))
	case domain.ErrUserNotFound:
		gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
	}
}
