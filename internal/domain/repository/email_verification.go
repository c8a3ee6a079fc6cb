package repository

import (
	"context"
	"time"
)

// PendingVerification es el join users ⋈ email_verifications para un token.
type PendingVerification struct {
	TokenHash  string
	UserID     string
	Email      string
	IsVerified bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// EmailVerificationRepository persiste sólo el SHA-256 del token.
type EmailVerificationRepository interface {
	// Replace borra tokens previos del usuario e inserta el nuevo.
	Replace(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// Lookup retorna ErrNotFound si el hash no existe.
	Lookup(ctx context.Context, tokenHash string) (*PendingVerification, error)

	// Consume marca al usuario verificado sólo si no lo estaba. El token no se borra:
	// los re-clicks del mismo link resuelven "ya verificado" hasta que DeleteExpired lo purga.
	// Retorna true si esta llamada hizo la transición.
	Consume(ctx context.Context, userID, tokenHash string) (bool, error)

	// DeleteExpired elimina tokens vencidos. Retorna cuántos borró.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
