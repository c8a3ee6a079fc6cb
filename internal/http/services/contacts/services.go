// Package contacts contiene los services de contactos, importación CSV y unsubscribe.
package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/jwt"
)

var (
	ErrInvalidInput  = errors.New("invalid contact")
	ErrNotFound      = errors.New("contact not found")
	ErrEmailTaken    = errors.New("email already exists in this website")
	ErrLabelNotFound = errors.New("label not found")
	ErrTokenInvalid  = errors.New("invalid unsubscribe token")
)

// InputError indica el campo inválido. Unwrap => ErrInvalidInput.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string { return e.Field + ": " + e.Reason }
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// UnsubscribeParser valida el token de los links de baja.
type UnsubscribeParser interface {
	ParseUnsubscribe(raw string) (*jwt.UnsubscribeClaims, error)
}

type Deps struct {
	Contacts repository.ContactRepository
	Labels   repository.LabelRepository
	Tokens   UnsubscribeParser
	// Cache guarda los valores de filtros por website (opcional).
	Cache    cache.Client
	CacheTTL time.Duration
}

// Services agrupa los services del dominio contacts.
type Services struct {
	Contacts    ContactService
	Import      ImportService
	Unsubscribe UnsubscribeService
}

func NewServices(d Deps) Services {
	if d.CacheTTL <= 0 {
		d.CacheTTL = 2 * time.Minute
	}
	return Services{
		Contacts:    NewContactService(d),
		Import:      NewImportService(d),
		Unsubscribe: NewUnsubscribeService(d),
	}
}

// checkLabel verifica que el label pertenezca al website.
func checkLabel(ctx context.Context, labels repository.LabelRepository, websiteID string, labelID *string) error {
	if labelID == nil {
		return nil
	}
	if _, err := labels.Get(ctx, websiteID, *labelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLabelNotFound
		}
		return err
	}
	return nil
}
