package repository

import (
	"context"
	"time"
)

type Contact struct {
	ID           string
	WebsiteID    string
	Prefix       string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	Country      string
	State        string
	City         string
	PostalCode   string
	LabelID      *string
	Tag          string
	Gender       string
	Unsubscribed bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContactInput son los campos editables (create, import y patch completo).
type ContactInput struct {
	Prefix     string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	Country    string
	State      string
	City       string
	PostalCode string
	LabelID    *string
	Tag        string
	Gender     string
}

// ContactFilter: campos vacíos no filtran.
type ContactFilter struct {
	Gender       string
	Country      string
	Tag          string
	LabelID      string
	Search       string
	Unsubscribed *bool
	Limit        int
	Offset       int
}

// ContactFilterValues alimenta los selects de filtros del front.
type ContactFilterValues struct {
	Countries []string
	Tags      []string
	Genders   []string
}

// RecipientSelector elige la audiencia de una campaña.
type RecipientSelector struct {
	All        bool     `json:"all"`
	ContactIDs []string `json:"contact_ids"`
	LabelIDs   []string `json:"label_ids"`
}

// Empty indica que no se eligió ningún destinatario.
func (s RecipientSelector) Empty() bool {
	return !s.All && len(s.ContactIDs) == 0 && len(s.LabelIDs) == 0
}

type ContactRepository interface {
	List(ctx context.Context, websiteID string, f ContactFilter) ([]Contact, int, error)
	Get(ctx context.Context, websiteID, contactID string) (*Contact, error)
	// Create retorna ErrConflict si el email ya existe en el website.
	Create(ctx context.Context, websiteID string, input ContactInput) (*Contact, error)
	Update(ctx context.Context, websiteID, contactID string, input ContactInput) (*Contact, error)
	Delete(ctx context.Context, websiteID, contactID string) error
	FilterValues(ctx context.Context, websiteID string) (*ContactFilterValues, error)

	// ExistingEmails retorna el subconjunto (lower case) de emails ya guardados.
	ExistingEmails(ctx context.Context, websiteID string, emails []string) (map[string]bool, error)
	// BulkInsert ignora duplicados y retorna cuántos insertó.
	BulkInsert(ctx context.Context, websiteID string, inputs []ContactInput) (int, error)

	// SetUnsubscribed es idempotente.
	SetUnsubscribed(ctx context.Context, websiteID, contactID string) error

	// Audience resuelve el selector: nunca incluye desuscriptos, un contacto por email.
	Audience(ctx context.Context, websiteID string, sel RecipientSelector) ([]Contact, error)
}
