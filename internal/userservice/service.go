// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/passpkg"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, search string, limit, offset int32) ([]domain.User, error)
	Update(ctx context.Context, arg domain.UpdateUserParams) (domain.User, error)
	Delete(ctx context.Context, id int64) error
	SenderStats(ctx context.Context) ([]domain.SenderStats, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		InitialBalance: u.InitialBalance,
		Balance:        u.Balance,
		CreatedAt:      u.CreatedAt,
	}
}

// Create registers a user whose balance starts at the given initial balance.
func (s *Service) Create(ctx context.Context, name, email, password, initialBalance string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	balance, err := decimal.NewFromString(initialBalance)
	if err != nil {
		l.Info().Err(err).Send()
		return result, domain.ErrInvalidAmount
	}

	if balance.IsNegative() {
		return result, domain.ErrNegativeAmount
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           domain.RoleUser,
		InitialBalance: balance.StringFixed(2),
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(gotUser), nil
}

// CheckPassword checks if the password is valid for the given email.
func (s *Service) CheckPassword(ctx context.Context, email, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	return NewUserWithoutPassword(gotUser), nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// Profile returns the sanitized user registered with the given email.
func (s *Service) Profile(ctx context.Context, email string) (domain.UserWithoutPassword, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return NewUserWithoutPassword(u), nil
}

// GetUser returns the sanitized user with the given id. Admin only.
func (s *Service) GetUser(ctx context.Context, actorEmail string, id int64) (domain.UserWithoutPassword, error) {
	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return domain.UserWithoutPassword{}, err
	}

	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return NewUserWithoutPassword(u), nil
}

// GetByEmail returns the user registered with the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns users matching the search term. Admin only.
func (s *Service) List(ctx context.Context, actorEmail, search string, pageSize, pageID int32) ([]domain.UserWithoutPassword, error) {
	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	users, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]domain.UserWithoutPassword, 0, len(users))
	for _, u := range users {
		result = append(result, NewUserWithoutPassword(u))
	}

	return result, nil
}

// Update updates the given user fields. Admin only. A non-nil password is
// hashed before it is stored.
func (s *Service) Update(ctx context.Context, actorEmail string, arg domain.UpdateUserParams, password *string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return result, err
	}

	if arg.InitialBalance != nil {
		balance, err := decimal.NewFromString(*arg.InitialBalance)
		if err != nil {
			l.Info().Err(err).Send()
			return result, domain.ErrInvalidAmount
		}

		if balance.IsNegative() {
			return result, domain.ErrNegativeAmount
		}

		fixed := balance.StringFixed(2)
		arg.InitialBalance = &fixed
	}

	if password != nil {
		hashedPassword, err := passpkg.Hash(*password)
		if err != nil {
			l.Error().Err(err).Send()
			return result, errorspkg.ErrInternal
		}

		arg.HashedPassword = &hashedPassword
	}

	updated, err := s.repo.Update(ctx, arg)
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(updated), nil
}

// Delete removes the user with the given id. Admin only.
func (s *Service) Delete(ctx context.Context, actorEmail string, id int64) error {
	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// SenderStats returns per-user outgoing transfer aggregates. Admin only.
func (s *Service) SenderStats(ctx context.Context, actorEmail string) ([]domain.SenderStats, error) {
	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}

	return s.repo.SenderStats(ctx)
}

func (s *Service) requireAdmin(ctx context.Context, actorEmail string) error {
	actor, err := s.repo.GetByEmail(ctx, actorEmail)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	return nil
}
