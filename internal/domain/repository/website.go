package repository

import (
	"context"
	"time"
)

// Website es el límite de tenancy: contactos, labels, SMTP y campañas cuelgan de acá.
type Website struct {
	ID          string
	UserID      string
	CompanyName string
	Domain      string
	Field       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateWebsiteInput struct {
	UserID      string
	CompanyName string
	Domain      string
	Field       string
}

// UpdateWebsiteInput: nil => no cambia.
type UpdateWebsiteInput struct {
	CompanyName *string
	Domain      *string
	Field       *string
}

type WebsiteRepository interface {
	Create(ctx context.Context, input CreateWebsiteInput) (*Website, error)
	ListByUser(ctx context.Context, userID string) ([]Website, error)
	// Get busca sin scope de usuario (uso interno: dispatcher, unsubscribe).
	Get(ctx context.Context, websiteID string) (*Website, error)
	// GetForUser retorna ErrNotFound si no existe o pertenece a otro usuario.
	GetForUser(ctx context.Context, websiteID, userID string) (*Website, error)
	Update(ctx context.Context, websiteID, userID string, input UpdateWebsiteInput) (*Website, error)
	Delete(ctx context.Context, websiteID, userID string) error
}
