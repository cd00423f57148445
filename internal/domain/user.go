// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword indicates the wrong password for the given user.
	ErrWrongPassword = errors.New("wrong password")
	// ErrForbidden indicates that the user is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUserHasPendingTransfers indicates that the user cannot be deleted while transfers are pending.
	ErrUserHasPendingTransfers = errors.New("user has pending transfers")
	// ErrUserHasTransfers indicates that the user cannot be deleted because of historical transfers.
	ErrUserHasTransfers = errors.New("user has associated transfers")
)

// Supported user roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User holds registered user data including the current balance.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	Role           string    `json:"role"`
	InitialBalance string    `json:"initial_balance"`
	Balance        string    `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	Role           string `json:"role"`
	InitialBalance string `json:"initial_balance"`
}

// UpdateUserParams is the input data to update a user. Nil fields are left unchanged.
type UpdateUserParams struct {
	ID             int64
	Name           *string
	Email          *string
	HashedPassword *string
	InitialBalance *string
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	InitialBalance string    `json:"initial_balance"`
	Balance        string    `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
}

// SenderStats holds per-user outgoing transfer aggregates.
type SenderStats struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	TotalTransferred string `json:"total_transferred"`
	AverageAmount    string `json:"average_amount"`
}
