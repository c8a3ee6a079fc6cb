package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/security/password"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

// RegisterService crea cuentas nuevas (sin verificar) y dispara el mail de verificación.
type RegisterService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error)
}

type RegisterDeps struct {
	Deps
	Links *verificationMailer
}

type registerService struct {
	deps RegisterDeps
}

func NewRegisterService(deps RegisterDeps) RegisterService {
	return &registerService{deps: deps}
}

func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	name := strings.TrimSpace(in.Name)
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	addr, ok := validation.NormalizeEmail(in.Email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	if len([]rune(in.Password)) < s.deps.PasswordMinLength {
		return nil, ErrPasswordTooWeak
	}

	phc, err := password.Hash(password.Default, in.Password)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:        addr,
		Name:         name,
		PasswordHash: phc,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Debug("email already exists")
			return nil, ErrEmailTaken
		}
		log.Error("user creation failed", logger.Err(err))
		return nil, err
	}
	log = log.With(logger.UserID(user.ID))

	link, err := s.deps.Links.Issue(ctx, user)
	if err != nil {
		// La cuenta ya existe: el usuario puede pedir el reenvío.
		log.Error("verification token issue failed", logger.Err(err))
	}

	res := &dto.RegisterResult{UserID: user.ID, Email: user.Email, IsVerified: user.IsVerified}
	if s.deps.DebugEchoLinks {
		res.VerifyLink = link
	}
	log.Info("user registered")
	return res, nil
}
