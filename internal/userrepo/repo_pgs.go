// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/pkg/dbpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS. Passing a *sql.Tx composes all
// operations into the enclosing transaction.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO users (
    name,
    email,
    hashed_password,
    role,
    initial_balance,
    balance
) VALUES (
    $1, $2, $3, $4, $5, $5
) RETURNING id, name, email, hashed_password, role, initial_balance, balance, created_at
`

// Create creates the user with balance equal to the initial balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Name,
		arg.Email,
		arg.HashedPassword,
		arg.Role,
		arg.InitialBalance,
	)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
				return u, domain.ErrEmailAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getQuery = `
SELECT
	id, name, email, hashed_password, role, initial_balance, balance, created_at
FROM users
WHERE id = $1
`

// Get returns the user with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := scanUser(r.db.QueryRowContext(ctx, getQuery, id), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getByEmailQuery = `
SELECT
	id, name, email, hashed_password, role, initial_balance, balance, created_at
FROM users
WHERE email = $1
`

// GetByEmail returns the user registered with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := scanUser(r.db.QueryRowContext(ctx, getByEmailQuery, email), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const addBalanceQuery = `
UPDATE users
SET balance = balance + $1
WHERE id = $2
RETURNING id, name, email, hashed_password, role, initial_balance, balance, created_at
`

// AddBalance atomically applies the given delta to the user's balance and
// returns the changed user. The users_balance_check constraint rejects any
// update that would drive the balance negative.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int64) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := scanUser(r.db.QueryRowContext(ctx, addBalanceQuery, amount, id), &u)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "users_balance_check" {
				return u, domain.ErrInsufficientBalance
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const lockQuery = `
SELECT
	id, name, email, hashed_password, role, initial_balance, balance, created_at
FROM users
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the user with the given id locking its row until the
// enclosing transaction ends. Callers must lock rows in ascending id order.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := scanUser(r.db.QueryRowContext(ctx, lockQuery, id), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, err
	}

	return u, nil
}

const listQuery = `
SELECT
	id, name, email, hashed_password, role, initial_balance, balance, created_at
FROM users
WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns users optionally filtered by a search term over name and email.
func (r *RepoPGS) List(ctx context.Context, search string, limit, offset int32) ([]domain.User, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, search, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.User{}

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.HashedPassword,
			&u.Role,
			&u.InitialBalance,
			&u.Balance,
			&u.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, u)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE users
SET
	name = COALESCE($2, name),
	email = COALESCE($3, email),
	hashed_password = COALESCE($4, hashed_password),
	initial_balance = COALESCE($5, initial_balance)
WHERE id = $1
RETURNING id, name, email, hashed_password, role, initial_balance, balance, created_at
`

// Update updates the non-nil fields of the user and returns it.
func (r *RepoPGS) Update(ctx context.Context, arg domain.UpdateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		arg.ID,
		nullString(arg.Name),
		nullString(arg.Email),
		nullString(arg.HashedPassword),
		nullString(arg.InitialBalance),
	)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
				return u, domain.ErrEmailAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const pendingTransfersQuery = `
SELECT EXISTS (
	SELECT 1 FROM transfers
	WHERE (sender_id = $1 OR receiver_id = $1) AND status = 'pending'
)
`

const deleteQuery = `
DELETE FROM users
WHERE id = $1
`

// Delete removes the user with the given id. Users with pending transfers
// or historical ledger entries cannot be deleted.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	var pending bool
	if err := r.db.QueryRowContext(ctx, pendingTransfersQuery, id).Scan(&pending); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if pending {
		return domain.ErrUserHasPendingTransfers
	}

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return domain.ErrUserHasTransfers
			}
		}

		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

const senderStatsQuery = `
SELECT
	users.id,
	users.name,
	COALESCE(SUM(t.amount), 0) AS total_transferred,
	COALESCE(AVG(t.amount), 0) AS average_amount
FROM users
LEFT JOIN transfers AS t
	ON users.id = t.sender_id AND t.status = 'completed'
GROUP BY users.id, users.name
ORDER BY total_transferred DESC
`

// SenderStats returns total and average completed outgoing amount per user.
func (r *RepoPGS) SenderStats(ctx context.Context) ([]domain.SenderStats, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, senderStatsQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.SenderStats{}

	for rows.Next() {
		var s domain.SenderStats
		if err := rows.Scan(&s.ID, &s.Name, &s.TotalTransferred, &s.AverageAmount); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, s)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

func scanUser(row *sql.Row, u *domain.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.Role,
		&u.InitialBalance,
		&u.Balance,
		&u.CreatedAt,
	)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}
