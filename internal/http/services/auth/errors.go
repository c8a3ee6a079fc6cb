package auth

import "errors"

// Errores del dominio auth (sentinel). El controller los mapea a AppError.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooWeak    = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	ErrUserNotFound       = errors.New("user not found")

	ErrTokenMissing = errors.New("verification token missing")
	ErrTokenInvalid = errors.New("verification token invalid")
	ErrTokenExpired = errors.New("verification token expired")
)
