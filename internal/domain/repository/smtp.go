package repository

import (
	"context"
	"time"
)

// SMTPConfig guarda la password cifrada (secretbox); nunca sale en claro por la API.
type SMTPConfig struct {
	ID          string
	WebsiteID   string
	Name        string
	Host        string
	Port        int
	Username    string
	PasswordEnc string
	Secure      bool
	IsDefault   bool
	CreatedAt   time.Time
}

type CreateSMTPConfigInput struct {
	Name        string
	Host        string
	Port        int
	Username    string
	PasswordEnc string
	Secure      bool
	IsDefault   bool
}

type SMTPConfigRepository interface {
	List(ctx context.Context, websiteID string) ([]SMTPConfig, error)
	Get(ctx context.Context, websiteID, configID string) (*SMTPConfig, error)
	// GetDefault retorna ErrNotFound si el website no tiene configs.
	GetDefault(ctx context.Context, websiteID string) (*SMTPConfig, error)
	// Create: la primera config del website queda como default; IsDefault limpia la anterior.
	Create(ctx context.Context, websiteID string, input CreateSMTPConfigInput) (*SMTPConfig, error)
	SetDefault(ctx context.Context, websiteID, configID string) error
	// Delete promueve otra config a default si se borró la default.
	Delete(ctx context.Context, websiteID, configID string) error
}
