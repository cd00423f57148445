// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/userrepo"
	"github.com/DevMeza-lvl/api-transacciones/pkg/dbpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
)

// pqLockNotAvailable is the postgres error code returned when lock_timeout expires.
const pqLockNotAvailable = "55P03"

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transfer RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transfer RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transfers (sender_id, receiver_id, amount, description, status, transfer_date)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING id, sender_id, receiver_id, amount, description, status, transfer_date, created_at
`

// Create appends a completed ledger entry and then returns it.
// Entries are never updated or deleted afterwards.
func (r *RepoPGS) Create(ctx context.Context, arg domain.TransferTxParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.SenderID,
		arg.ReceiverID,
		arg.Amount,
		arg.Description,
		domain.StatusCompleted,
		arg.TransferDate,
	)

	var t domain.Transfer

	err := scanTransfer(row, &t)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transfers_dedup_key":
				// Constraint race with a concurrent identical append.
				return t, domain.ErrDuplicateTransfer
			case "transfers_sender_id_fkey", "transfers_receiver_id_fkey":
				return t, domain.ErrUserNotFound
			case "transfers_amount_check":
				return t, domain.ErrInvalidAmount
			case "transfers_sender_receiver_check":
				return t, domain.ErrSelfTransfer
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, sender_id, receiver_id, amount, description, status, transfer_date, created_at
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	var t domain.Transfer

	err := scanTransfer(r.db.QueryRowContext(ctx, getQuery, id), &t)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransferNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, sender_id, receiver_id, amount, description, status, transfer_date, created_at
FROM transfers
WHERE
    ($1::date IS NULL OR transfer_date >= $1)
    AND ($2::date IS NULL OR transfer_date <= $2)
    AND ($3::bigint = 0 OR sender_id = $3 OR receiver_id = $3)
ORDER BY created_at DESC
LIMIT NULLIF($4::bigint, 0) OFFSET $5
`

// List returns transfers matching the given filters, newest first.
// A zero limit returns all matching rows.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery,
		nullDate(arg.DateFrom),
		nullDate(arg.DateTo),
		arg.UserID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		var t domain.Transfer
		if err := rows.Scan(
			&t.ID,
			&t.SenderID,
			&t.ReceiverID,
			&t.Amount,
			&t.Description,
			&t.Status,
			&t.TransferDate,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const sumCompletedOnDateQuery = `
SELECT COALESCE(SUM(amount), 0)
FROM transfers
WHERE sender_id = $1 AND transfer_date = $2 AND status = 'completed'
`

// SumCompletedOnDate returns the total completed amount sent by the user on the given date.
func (r *RepoPGS) SumCompletedOnDate(ctx context.Context, senderID int64, date time.Time) (string, error) {
	l := zerolog.Ctx(ctx)

	var sum string

	err := r.db.QueryRowContext(ctx, sumCompletedOnDateQuery, senderID, date).Scan(&sum)
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return sum, nil
}

const existsOnDateQuery = `
SELECT EXISTS (
	SELECT 1 FROM transfers
	WHERE sender_id = $1
		AND receiver_id = $2
		AND amount = $3
		AND description = $4
		AND transfer_date = $5
)
`

// ExistsOnDate reports whether a transfer with the identical
// duplicate-detection key already exists on the given date.
func (r *RepoPGS) ExistsOnDate(ctx context.Context, senderID, receiverID int64, amount, description string, date time.Time) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool

	err := r.db.QueryRowContext(ctx, existsOnDateQuery, senderID, receiverID, amount, description, date).Scan(&exists)
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

// Transfer moves money between two users as one atomic unit of work.
//
// It locks both user rows in ascending id order, re-checks the sender's
// daily cap inside the lock scope, appends the ledger entry and adjusts
// both balances within a single database transaction. Either every write
// commits or none does.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Error().Err(err).Send()
		return result, domain.ErrInvalidAmount
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	// Bound lock waits so a contended transfer fails retryable instead of hanging.
	if _, err := tx.ExecContext(ctx, "SET LOCAL lock_timeout = '3s'"); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	users := userrepo.NewRepoPGS(tx)
	ledger := NewTxRepoPGS(tx)

	// Lock rows in ascending id order so two mirror-image transfers cannot deadlock.
	firstID, secondID := arg.SenderID, arg.ReceiverID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	for _, id := range []int64{firstID, secondID} {
		if _, err := users.GetForUpdate(ctx, id); err != nil {
			return result, txError(l, err)
		}
	}

	// The sender row is locked, so the completed sum cannot change under us.
	sumToday, err := ledger.SumCompletedOnDate(ctx, arg.SenderID, arg.TransferDate)
	if err != nil {
		return result, err
	}

	sum, err := decimal.NewFromString(sumToday)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	if sum.Add(amount).GreaterThan(domain.DailyTransferLimit) {
		return result, domain.ErrDailyLimitExceeded
	}

	result.Transfer, err = ledger.Create(ctx, arg)
	if err != nil {
		return result, txError(l, err)
	}

	sender, err := users.AddBalance(ctx, "-"+arg.Amount, arg.SenderID)
	if err != nil {
		return result, txError(l, err)
	}

	receiver, err := users.AddBalance(ctx, arg.Amount, arg.ReceiverID)
	if err != nil {
		return result, txError(l, err)
	}

	result.SenderBalance = sender.Balance
	result.ReceiverBalance = receiver.Balance

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, errorspkg.ErrInternal
	}

	return result, nil
}

// txError keeps typed business rejections intact and folds everything else,
// including lock timeouts, into the retryable internal kind.
func txError(l *zerolog.Logger, err error) error {
	switch err {
	case domain.ErrUserNotFound,
		domain.ErrSelfTransfer,
		domain.ErrInvalidAmount,
		domain.ErrInsufficientBalance,
		domain.ErrDailyLimitExceeded,
		domain.ErrDuplicateTransfer:
		return err
	}

	if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqLockNotAvailable {
		l.Warn().Err(err).Msg("transfer lock timeout")
		return errorspkg.ErrInternal
	}

	l.Error().Err(err).Send()

	return errorspkg.ErrInternal
}

func scanTransfer(row *sql.Row, t *domain.Transfer) error {
	return row.Scan(
		&t.ID,
		&t.SenderID,
		&t.ReceiverID,
		&t.Amount,
		&t.Description,
		&t.Status,
		&t.TransferDate,
		&t.CreatedAt,
	)
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: t, Valid: true}
}
