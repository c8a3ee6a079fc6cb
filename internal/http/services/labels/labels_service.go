// Package labels contiene el service de etiquetas de contactos.
package labels

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/label"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

var (
	ErrMissingName  = errors.New("label name is required")
	ErrInvalidColor = errors.New("color must be #RGB or #RRGGBB")
	ErrNameTaken    = errors.New("label name already exists")
	ErrNotFound     = errors.New("label not found")
)

type Service interface {
	List(ctx context.Context, websiteID string) (*dto.ListResponse, error)
	Create(ctx context.Context, websiteID string, in dto.Request) (*dto.Label, error)
	Update(ctx context.Context, websiteID, labelID string, in dto.Request) (*dto.Label, error)
	Delete(ctx context.Context, websiteID, labelID string) error
}

type Deps struct {
	Labels repository.LabelRepository
}

type Services struct {
	Labels Service
}

func NewServices(d Deps) Services {
	return Services{Labels: NewService(d)}
}

type service struct{ deps Deps }

func NewService(d Deps) Service { return &service{deps: d} }

func toDTO(l *repository.Label) dto.Label {
	return dto.Label{LabelID: l.ID, Name: l.Name, Color: l.Color, CreatedAt: l.CreatedAt}
}

func normalize(in dto.Request) (repository.LabelInput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return repository.LabelInput{}, ErrMissingName
	}
	color, ok := validation.NormalizeColor(in.Color)
	if !ok {
		return repository.LabelInput{}, ErrInvalidColor
	}
	return repository.LabelInput{Name: name, Color: color}, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrNameTaken
	}
	return err
}

func (s *service) List(ctx context.Context, websiteID string) (*dto.ListResponse, error) {
	rows, err := s.deps.Labels.List(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{Items: make([]dto.Label, 0, len(rows))}
	for i := range rows {
		out.Items = append(out.Items, toDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, websiteID string, in dto.Request) (*dto.Label, error) {
	input, err := normalize(in)
	if err != nil {
		return nil, err
	}
	l, err := s.deps.Labels.Create(ctx, websiteID, input)
	if err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			logger.From(ctx).Error("label create failed",
				logger.Layer("service"), logger.Component("labels"), logger.Op("Create"), logger.Err(err))
		}
		return nil, mapRepoErr(err)
	}
	out := toDTO(l)
	return &out, nil
}

func (s *service) Update(ctx context.Context, websiteID, labelID string, in dto.Request) (*dto.Label, error) {
	input, err := normalize(in)
	if err != nil {
		return nil, err
	}
	l, err := s.deps.Labels.Update(ctx, websiteID, labelID, input)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	out := toDTO(l)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, websiteID, labelID string) error {
	return mapRepoErr(s.deps.Labels.Delete(ctx, websiteID, labelID))
}
