// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
	List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error)
	SumCompletedOnDate(ctx context.Context, senderID int64, date time.Time) (string, error)
	ExistsOnDate(ctx context.Context, senderID, receiverID int64, amount, description string, date time.Time) (bool, error)
}

// UserService provides the user lookups needed by transfer service layer.
type UserService interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo        Repo
	userService UserService
}

// New returns transfer service struct to manage transfer business logic.
func New(tr Repo, us UserService) *Service {
	return &Service{
		repo:        tr,
		userService: us,
	}
}

// timeNow is stubbed in tests.
var timeNow = time.Now

// today returns the current UTC calendar date.
func today() time.Time {
	return timeNow().UTC().Truncate(24 * time.Hour)
}

// parseAmount parses the request amount exactly once. All later arithmetic
// uses the returned exact decimal; floats never touch money.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if amount.Exponent() < -2 {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if !amount.IsPositive() {
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	if amount.GreaterThan(domain.MaxTransferAmount) {
		return decimal.Decimal{}, domain.ErrAmountTooLarge
	}

	return amount, nil
}

// Transfer validates the transfer request against the sender identified by
// senderEmail and, if every check passes, executes it as one atomic unit.
// Validation rejections are expected business outcomes and leave all state
// unchanged.
func (s *Service) Transfer(ctx context.Context, senderEmail string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	amount, err := parseAmount(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	// Pin the calendar date once per request so the daily window, the
	// duplicate key and the ledger entry agree even across midnight.
	transferDate := today()

	sender, err := s.userService.GetByEmail(ctx, senderEmail)
	if err != nil {
		// senderEmail comes from a verified token, so a miss is infrastructural.
		l.Error().Err(err).Send()
		return result, err
	}

	receiver, err := s.userService.GetByEmail(ctx, arg.ReceiverEmail)
	if err != nil {
		if err == domain.ErrUserNotFound {
			l.Info().Err(err).Send()
			return result, domain.ErrReceiverNotFound
		}

		l.Error().Err(err).Send()

		return result, err
	}

	sentToday, err := s.repo.SumCompletedOnDate(ctx, sender.ID, transferDate)
	if err != nil {
		return result, err
	}

	sentTodayDec, err := decimal.NewFromString(sentToday)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	balance, err := decimal.NewFromString(sender.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	duplicate, err := s.repo.ExistsOnDate(ctx, sender.ID, receiver.ID, amount.StringFixed(2), arg.Description, transferDate)
	if err != nil {
		return result, err
	}

	if err := validate(sender.ID, receiver.ID, balance, amount, sentTodayDec, duplicate); err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	result, err = s.repo.Transfer(ctx, domain.TransferTxParams{
		SenderID:     sender.ID,
		ReceiverID:   receiver.ID,
		Amount:       amount.StringFixed(2),
		Description:  arg.Description,
		TransferDate: transferDate,
	})
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	return result, nil
}

// Get returns the transfer with the given id. Non-admin actors only see
// transfers they take part in.
func (s *Service) Get(ctx context.Context, actorEmail string, id int64) (domain.Transfer, error) {
	actor, err := s.userService.GetByEmail(ctx, actorEmail)
	if err != nil {
		return domain.Transfer{}, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}

	if actor.Role != domain.RoleAdmin && t.SenderID != actor.ID && t.ReceiverID != actor.ID {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return t, nil
}

// List returns transfers matching the filters. Non-admin actors are
// restricted to transfers they take part in.
func (s *Service) List(ctx context.Context, actorEmail string, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	actor, err := s.userService.GetByEmail(ctx, actorEmail)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin {
		arg.UserID = actor.ID
	}

	return s.repo.List(ctx, arg)
}

// ListForExport returns all transfers in the date range without pagination,
// scoped to the actor unless the actor is an admin.
func (s *Service) ListForExport(ctx context.Context, actorEmail string, dateFrom, dateTo time.Time) ([]domain.Transfer, error) {
	actor, err := s.userService.GetByEmail(ctx, actorEmail)
	if err != nil {
		return nil, err
	}

	arg := domain.ListTransfersParams{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}

	if actor.Role != domain.RoleAdmin {
		arg.UserID = actor.ID
	}

	return s.repo.List(ctx, arg)
}
