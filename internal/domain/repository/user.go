package repository

import (
	"context"
	"time"
)

// User es la cuenta dueña de uno o más websites.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
}

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

type UserRepository interface {
	// Create retorna ErrConflict si el email ya existe (case-insensitive).
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID string) (*User, error)
}
