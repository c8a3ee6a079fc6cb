package contacts

import (
	"context"
	"errors"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// UnsubscribeService procesa los links de baja de los emails de campaña (sin sesión).
type UnsubscribeService interface {
	Unsubscribe(ctx context.Context, token string) error
}

type unsubscribeService struct{ deps Deps }

func NewUnsubscribeService(deps Deps) UnsubscribeService {
	return &unsubscribeService{deps: deps}
}

// Unsubscribe es idempotente. Un contacto ya borrado no es error: el destinatario ya no recibe nada.
func (s *unsubscribeService) Unsubscribe(ctx context.Context, token string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("contacts"), logger.Op("Unsubscribe"))

	if token == "" || s.deps.Tokens == nil {
		return ErrTokenInvalid
	}
	claims, err := s.deps.Tokens.ParseUnsubscribe(token)
	if err != nil {
		log.Debug("unsubscribe token rejected", logger.Err(err))
		return ErrTokenInvalid
	}
	err = s.deps.Contacts.SetUnsubscribed(ctx, claims.WebsiteID, claims.ContactID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("unsubscribe failed", logger.Err(err), logger.ContactID(claims.ContactID))
		return err
	}
	log.Info("contact unsubscribed", logger.ContactID(claims.ContactID), logger.WebsiteID(claims.WebsiteID))
	return nil
}
