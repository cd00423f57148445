package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// MaxTransferAmount is the maximum amount of a single transfer.
	MaxTransferAmount = decimal.RequireFromString("5000.00")
	// DailyTransferLimit is the maximum total amount a user may send
	// across completed transfers in one calendar day.
	DailyTransferLimit = decimal.RequireFromString("5000.00")
)

var (
	// ErrInvalidAmount indicates an amount that is not a valid decimal with at most two fraction digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates a zero or negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrAmountTooLarge indicates an amount above the single-transfer maximum.
	ErrAmountTooLarge = errors.New("amount exceeds the 5000.00 maximum")
	// ErrReceiverNotFound indicates that the receiver email is not registered.
	ErrReceiverNotFound = errors.New("receiver not found")
	// ErrSelfTransfer indicates a transfer where sender and receiver are the same user.
	ErrSelfTransfer = errors.New("cannot transfer to self")
	// ErrInsufficientBalance indicates that the sender does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrDailyLimitExceeded indicates that the transfer would exceed the sender's daily cap.
	ErrDailyLimitExceeded = errors.New("daily transfer limit exceeded")
	// ErrDuplicateTransfer indicates an identical same-day transfer already exists.
	ErrDuplicateTransfer = errors.New("duplicate transfer detected")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
)

// Transfer statuses. The engine only ever creates completed transfers;
// pending and rejected rows can exist from seed data and never transition.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Transfer is an immutable ledger entry recording one transfer between two users.
type Transfer struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	ReceiverID   int64     `json:"receiver_id"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	TransferDate time.Time `json:"transfer_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTransferParams is the input data for a transfer request.
type CreateTransferParams struct {
	ReceiverEmail string `json:"receiver_email"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

// TransferTxParams is the input data for the transfer transaction.
// TransferDate is pinned once per request by the service layer.
type TransferTxParams struct {
	SenderID     int64     `json:"sender_id"`
	ReceiverID   int64     `json:"receiver_id"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	TransferDate time.Time `json:"transfer_date"`
}

// ListTransfersParams is the input data to list transfers.
// Zero values disable the corresponding filter.
type ListTransfersParams struct {
	DateFrom time.Time `json:"date_from"`
	DateTo   time.Time `json:"date_to"`
	UserID   int64     `json:"user_id"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	Transfer        Transfer `json:"transfer"`
	SenderBalance   string   `json:"sender_balance"`
	ReceiverBalance string   `json:"receiver_balance"`
}
