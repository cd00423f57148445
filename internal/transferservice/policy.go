package transferservice

import (
	"github.com/shopspring/decimal"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
)

// validate runs the business checks for a transfer against a consistent
// snapshot of sender state. It is pure: no I/O, deterministic given its
// inputs. The check order is fixed because callers surface the first
// rejection: self-transfer, solvency, daily cap, duplicate. Receiver
// existence is established by the lookup preceding this call.
func validate(senderID, receiverID int64, balance, amount, sentToday decimal.Decimal, duplicate bool) error {
	if senderID == receiverID {
		return domain.ErrSelfTransfer
	}

	if balance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}

	if sentToday.Add(amount).GreaterThan(domain.DailyTransferLimit) {
		return domain.ErrDailyLimitExceeded
	}

	if duplicate {
		return domain.ErrDuplicateTransfer
	}

	return nil
}
