package repository

import (
	"context"
	"time"
)

type Label struct {
	ID        string
	WebsiteID string
	Name      string
	Color     string // #rgb | #rrggbb, lower case
	CreatedAt time.Time
}

type LabelInput struct {
	Name  string
	Color string
}

type LabelRepository interface {
	List(ctx context.Context, websiteID string) ([]Label, error)
	Get(ctx context.Context, websiteID, labelID string) (*Label, error)
	// Create/Update retornan ErrConflict si el nombre ya existe en el website.
	Create(ctx context.Context, websiteID string, input LabelInput) (*Label, error)
	Update(ctx context.Context, websiteID, labelID string, input LabelInput) (*Label, error)
	Delete(ctx context.Context, websiteID, labelID string) error
}
