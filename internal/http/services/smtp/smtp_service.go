// Package smtp contiene el registro de servidores SMTP por website.
package smtp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/smtp"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

var (
	ErrMissingFields = errors.New("name, host and port are required")
	ErrInvalidTarget = errors.New("test email is not a valid address")
	ErrNotFound      = errors.New("smtp config not found")
)

// ProbeError es un test de conexión/envío fallido. Hint es el texto para el usuario.
type ProbeError struct {
	Code string
	Hint string
	Err  error
}

func (e *ProbeError) Error() string { return "smtp test failed: " + e.Err.Error() }
func (e *ProbeError) Unwrap() error { return e.Err }

// Prober manda el mensaje de prueba. En producción es email.Probe.
type Prober func(ctx context.Context, cfg email.SMTPConfig, to string) error

// Encrypter cifra la password antes de persistir (secretbox.Box).
type Encrypter interface {
	Encrypt(plain string) (string, error)
}

type Service interface {
	List(ctx context.Context, websiteID string) (*dto.ListResponse, error)
	// Create prueba la conexión antes de guardar. callerEmail es el destino si no viene test_email.
	Create(ctx context.Context, websiteID, callerEmail string, in dto.CreateRequest) (*dto.Config, error)
	Test(ctx context.Context, callerEmail string, in dto.CreateRequest) error
	SetDefault(ctx context.Context, websiteID, configID string) error
	Delete(ctx context.Context, websiteID, configID string) error
}

type Deps struct {
	Configs repository.SMTPConfigRepository
	Secrets Encrypter
	Probe   Prober
	Timeout time.Duration
}

type Services struct {
	SMTP Service
}

func NewServices(d Deps) Services {
	return Services{SMTP: NewService(d)}
}

type service struct{ deps Deps }

func NewService(d Deps) Service {
	if d.Probe == nil {
		d.Probe = email.Probe
	}
	if d.Timeout <= 0 {
		d.Timeout = 15 * time.Second
	}
	return &service{deps: d}
}

func toDTO(c *repository.SMTPConfig) dto.Config {
	return dto.Config{
		ConfigID:  c.ID,
		Name:      c.Name,
		Host:      c.Host,
		Port:      c.Port,
		User:      c.Username,
		Secure:    c.Secure,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt,
	}
}

func (s *service) List(ctx context.Context, websiteID string) (*dto.ListResponse, error) {
	rows, err := s.deps.Configs.List(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{Items: make([]dto.Config, 0, len(rows))}
	for i := range rows {
		out.Items = append(out.Items, toDTO(&rows[i]))
	}
	return out, nil
}

func clean(in dto.CreateRequest) (dto.CreateRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Host = strings.ToLower(strings.TrimSpace(in.Host))
	in.User = strings.TrimSpace(in.User)
	in.TestEmail = strings.TrimSpace(in.TestEmail)
	if in.Host == "" || in.Port <= 0 || in.Port > 65535 {
		return in, ErrMissingFields
	}
	if in.Name == "" {
		in.Name = in.Host
	}
	return in, nil
}

// probe arma la config desde el request y manda el mensaje de prueba.
func (s *service) probe(ctx context.Context, callerEmail string, in dto.CreateRequest) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("smtp"), logger.Op("Probe"), logger.SMTPHost(in.Host, in.Port))

	target := in.TestEmail
	if target == "" {
		target = callerEmail
	}
	to, ok := validation.NormalizeEmail(target)
	if !ok {
		return ErrInvalidTarget
	}
	from := to
	if addr, ok := validation.NormalizeEmail(in.User); ok {
		from = addr
	}

	mode := "auto"
	if in.Secure {
		mode = "ssl"
	}
	cfg := email.SMTPConfig{
		Host:     in.Host,
		Port:     in.Port,
		Username: in.User,
		Password: in.Password,
		From:     from,
		TLSMode:  mode,
		Timeout:  s.deps.Timeout,
	}

	pctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := s.deps.Probe(pctx, cfg, to); err != nil {
		d := email.Diagnose(err)
		log.Warn("smtp probe failed", logger.String("code", d.Code), logger.Err(err))
		return &ProbeError{Code: d.Code, Hint: d.Hint(), Err: err}
	}
	log.Info("smtp probe ok")
	return nil
}

func (s *service) Test(ctx context.Context, callerEmail string, in dto.CreateRequest) error {
	in, err := clean(in)
	if err != nil {
		return err
	}
	return s.probe(ctx, callerEmail, in)
}

func (s *service) Create(ctx context.Context, websiteID, callerEmail string, in dto.CreateRequest) (*dto.Config, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("smtp"), logger.Op("Create"), logger.WebsiteID(websiteID))

	in, err := clean(in)
	if err != nil {
		return nil, err
	}
	if err := s.probe(ctx, callerEmail, in); err != nil {
		return nil, err
	}

	enc := ""
	if in.Password != "" {
		if s.deps.Secrets == nil {
			return nil, errors.New("smtp: secret box not configured")
		}
		enc, err = s.deps.Secrets.Encrypt(in.Password)
		if err != nil {
			log.Error("encrypt password failed", logger.Err(err))
			return nil, err
		}
	}

	c, err := s.deps.Configs.Create(ctx, websiteID, repository.CreateSMTPConfigInput{
		Name:        in.Name,
		Host:        in.Host,
		Port:        in.Port,
		Username:    in.User,
		PasswordEnc: enc,
		Secure:      in.Secure,
		IsDefault:   in.IsDefault,
	})
	if err != nil {
		log.Error("smtp config create failed", logger.Err(err))
		return nil, err
	}
	out := toDTO(c)
	return &out, nil
}

func (s *service) SetDefault(ctx context.Context, websiteID, configID string) error {
	if err := s.deps.Configs.SetDefault(ctx, websiteID, configID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete promueve otra config a default si se borra la actual (lo resuelve el repo).
func (s *service) Delete(ctx context.Context, websiteID, configID string) error {
	if err := s.deps.Configs.Delete(ctx, websiteID, configID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
