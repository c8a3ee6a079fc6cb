// Package websites contiene el service de websites (el límite de tenancy).
package websites

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/website"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

var (
	ErrMissingFields = errors.New("company_name and domain are required")
	ErrNotFound      = errors.New("website not found")
)

// OwnershipInvalidator limpia el cache de ownership del middleware de website.
type OwnershipInvalidator interface {
	Invalidate(ctx context.Context, websiteID string)
}

// Service define las operaciones sobre los websites del usuario de la sesión.
type Service interface {
	List(ctx context.Context, userID string) ([]dto.Website, error)
	Create(ctx context.Context, userID string, in dto.CreateRequest) (*dto.Website, error)
	Get(ctx context.Context, userID, websiteID string) (*dto.Website, error)
	Update(ctx context.Context, userID, websiteID string, in dto.UpdateRequest) (*dto.Website, error)
	Delete(ctx context.Context, userID, websiteID string) error
}

type Deps struct {
	Websites  repository.WebsiteRepository
	Ownership OwnershipInvalidator
}

// Services agrupa los services del dominio websites.
type Services struct {
	Websites Service
}

func NewServices(d Deps) Services {
	return Services{Websites: NewService(d)}
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	return &service{deps: deps}
}

func toDTO(w *repository.Website) dto.Website {
	return dto.Website{
		WebsiteID:   w.ID,
		CompanyName: w.CompanyName,
		Domain:      w.Domain,
		Field:       w.Field,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *service) List(ctx context.Context, userID string) ([]dto.Website, error) {
	rows, err := s.deps.Websites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Website, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, userID string, in dto.CreateRequest) (*dto.Website, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("websites"), logger.Op("Create"))

	name := strings.TrimSpace(in.CompanyName)
	domain := validation.NormalizeDomain(in.Domain)
	if name == "" || domain == "" {
		return nil, ErrMissingFields
	}
	w, err := s.deps.Websites.Create(ctx, repository.CreateWebsiteInput{
		UserID:      userID,
		CompanyName: name,
		Domain:      domain,
		Field:       strings.TrimSpace(in.Field),
	})
	if err != nil {
		log.Error("website create failed", logger.Err(err))
		return nil, err
	}
	log.Info("website created", logger.WebsiteID(w.ID))
	out := toDTO(w)
	return &out, nil
}

func (s *service) Get(ctx context.Context, userID, websiteID string) (*dto.Website, error) {
	w, err := s.deps.Websites.GetForUser(ctx, websiteID, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	out := toDTO(w)
	return &out, nil
}

func (s *service) Update(ctx context.Context, userID, websiteID string, in dto.UpdateRequest) (*dto.Website, error) {
	var upd repository.UpdateWebsiteInput
	if in.CompanyName != nil {
		v := strings.TrimSpace(*in.CompanyName)
		if v == "" {
			return nil, ErrMissingFields
		}
		upd.CompanyName = &v
	}
	if in.Domain != nil {
		v := validation.NormalizeDomain(*in.Domain)
		if v == "" {
			return nil, ErrMissingFields
		}
		upd.Domain = &v
	}
	if in.Field != nil {
		v := strings.TrimSpace(*in.Field)
		upd.Field = &v
	}
	w, err := s.deps.Websites.Update(ctx, websiteID, userID, upd)
	if err != nil {
		return nil, mapErr(err)
	}
	out := toDTO(w)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, userID, websiteID string) error {
	if err := s.deps.Websites.Delete(ctx, websiteID, userID); err != nil {
		return mapErr(err)
	}
	if s.deps.Ownership != nil {
		s.deps.Ownership.Invalidate(ctx, websiteID)
	}
	logger.From(ctx).Info("website deleted", logger.Layer("service"), logger.WebsiteID(websiteID))
	return nil
}
