package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/security/password"
)

// LoginService valida credenciales y emite el JWT de la cookie de sesión.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error)
}

type loginService struct {
	deps Deps
}

func NewLoginService(deps Deps) LoginService {
	return &loginService{deps: deps}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	addr := strings.ToLower(strings.TrimSpace(in.Email))
	if addr == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.deps.Users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Mismo costo que un password incorrecto para no filtrar qué emails existen.
			_ = password.Verify(in.Password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}

	if !password.Verify(in.Password, user.PasswordHash) {
		log.Debug("wrong password", logger.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	tok, exp, err := s.deps.Signer.IssueSession(user.ID, user.Email)
	if err != nil {
		log.Error("session issue failed", logger.Err(err))
		return nil, err
	}

	log.Info("login ok", logger.UserID(user.ID))
	return &dto.LoginResult{
		UserID:     user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		Token:      tok,
		ExpiresIn:  int64(exp.Sub(s.deps.Now()).Seconds()),
	}, nil
}

// dummyHash es un PHC válido de una password aleatoria.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$c29tZXNhbHRzb21lc2FsdA$2Y3k0r4vO0m4pQm0Jm3q8v9bWm7m8r6c3fJ8b1E0x2c"
