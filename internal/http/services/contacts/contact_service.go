package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/contact"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

// ContactService define el CRUD de contactos de un website.
type ContactService interface {
	List(ctx context.Context, websiteID string, f repository.ContactFilter) (*dto.ListResponse, error)
	Filters(ctx context.Context, websiteID string) (*dto.FiltersResponse, error)
	Get(ctx context.Context, websiteID, contactID string) (*dto.Contact, error)
	Create(ctx context.Context, websiteID string, in dto.Request) (*dto.Contact, error)
	// Update mergea los campos presentes sobre el contacto actual.
	Update(ctx context.Context, websiteID, contactID string, in dto.Request) (*dto.Contact, error)
	Delete(ctx context.Context, websiteID, contactID string) error
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type contactService struct {
	deps    Deps
	filters *filterCache
}

func NewContactService(deps Deps) ContactService {
	return &contactService{deps: deps, filters: &filterCache{deps: deps}}
}

func ToDTO(c *repository.Contact) dto.Contact {
	return dto.Contact{
		ContactID:    c.ID,
		Prefix:       c.Prefix,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		Country:      c.Country,
		State:        c.State,
		City:         c.City,
		PostalCode:   c.PostalCode,
		LabelID:      c.LabelID,
		Tag:          c.Tag,
		Gender:       c.Gender,
		Unsubscribed: c.Unsubscribed,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// merge aplica los campos presentes de in sobre base. label_id "" limpia el label.
func merge(base repository.ContactInput, in dto.Request) repository.ContactInput {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&base.Prefix, in.Prefix)
	set(&base.FirstName, in.FirstName)
	set(&base.LastName, in.LastName)
	set(&base.Email, in.Email)
	set(&base.Phone, in.Phone)
	set(&base.Address, in.Address)
	set(&base.Country, in.Country)
	set(&base.State, in.State)
	set(&base.City, in.City)
	set(&base.PostalCode, in.PostalCode)
	set(&base.Tag, in.Tag)
	set(&base.Gender, in.Gender)
	if in.LabelID != nil {
		if id := strings.TrimSpace(*in.LabelID); id != "" {
			base.LabelID = &id
		} else {
			base.LabelID = nil
		}
	}
	return base
}

func inputOf(c *repository.Contact) repository.ContactInput {
	return repository.ContactInput{
		Prefix:     c.Prefix,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		Country:    c.Country,
		State:      c.State,
		City:       c.City,
		PostalCode: c.PostalCode,
		LabelID:    c.LabelID,
		Tag:        c.Tag,
		Gender:     c.Gender,
	}
}

// normalize valida email y gender y deja el input listo para persistir.
func normalize(in repository.ContactInput) (repository.ContactInput, error) {
	if in.Email == "" {
		return in, &InputError{Field: "email", Reason: "required"}
	}
	addr, ok := validation.NormalizeEmail(in.Email)
	if !ok {
		return in, &InputError{Field: "email", Reason: "invalid address"}
	}
	in.Email = addr
	in.Gender = strings.ToLower(in.Gender)
	if !validation.ValidGender(in.Gender) {
		return in, &InputError{Field: "gender", Reason: "must be male, female or other"}
	}
	return in, nil
}

func (s *contactService) List(ctx context.Context, websiteID string, f repository.ContactFilter) (*dto.ListResponse, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))

	rows, total, err := s.deps.Contacts.List(ctx, websiteID, f)
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{Items: make([]dto.Contact, 0, len(rows)), Total: total}
	for i := range rows {
		out.Items = append(out.Items, ToDTO(&rows[i]))
	}
	return out, nil
}

func (s *contactService) Filters(ctx context.Context, websiteID string) (*dto.FiltersResponse, error) {
	v, err := s.filters.Get(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	return &dto.FiltersResponse{Countries: v.Countries, Tags: v.Tags, Genders: v.Genders}, nil
}

func (s *contactService) Get(ctx context.Context, websiteID, contactID string) (*dto.Contact, error) {
	c, err := s.deps.Contacts.Get(ctx, websiteID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := ToDTO(c)
	return &out, nil
}

func (s *contactService) Create(ctx context.Context, websiteID string, in dto.Request) (*dto.Contact, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("contacts"), logger.Op("Create"))

	input, err := normalize(merge(repository.ContactInput{}, in))
	if err != nil {
		return nil, err
	}
	if err := checkLabel(ctx, s.deps.Labels, websiteID, input.LabelID); err != nil {
		return nil, err
	}
	c, err := s.deps.Contacts.Create(ctx, websiteID, input)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		log.Error("contact create failed", logger.Err(err))
		return nil, err
	}
	s.filters.Invalidate(ctx, websiteID)
	out := ToDTO(c)
	return &out, nil
}

func (s *contactService) Update(ctx context.Context, websiteID, contactID string, in dto.Request) (*dto.Contact, error) {
	cur, err := s.deps.Contacts.Get(ctx, websiteID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	input, err := normalize(merge(inputOf(cur), in))
	if err != nil {
		return nil, err
	}
	if err := checkLabel(ctx, s.deps.Labels, websiteID, input.LabelID); err != nil {
		return nil, err
	}
	c, err := s.deps.Contacts.Update(ctx, websiteID, contactID, input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.filters.Invalidate(ctx, websiteID)
	out := ToDTO(c)
	return &out, nil
}

func (s *contactService) Delete(ctx context.Context, websiteID, contactID string) error {
	if err := s.deps.Contacts.Delete(ctx, websiteID, contactID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.filters.Invalidate(ctx, websiteID)
	return nil
}
