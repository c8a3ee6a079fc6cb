package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	tokens "github.com/dropDatabas3/hellomail/internal/security/token"
)

// VerifyService activa cuentas a partir del token del link y reenvía links vencidos.
type VerifyService interface {
	Verify(ctx context.Context, rawToken string) (*dto.VerifyResult, error)
	// Resend nunca revela si el email existe.
	Resend(ctx context.Context, email string) error
}

type VerifyDeps struct {
	Deps
	Links *verificationMailer
}

type verifyService struct {
	deps VerifyDeps
}

func NewVerifyService(deps VerifyDeps) VerifyService {
	return &verifyService{deps: deps}
}

// Verify:
//   - token vacío => ErrTokenMissing; desconocido => ErrTokenInvalid
//   - usuario ya verificado => AlreadyVerified, sin escrituras
//   - vencido => ErrTokenExpired, sin tocar usuario ni token
//   - resto => Consume (transición única is_verified=false→true)
func (s *verifyService) Verify(ctx context.Context, rawToken string) (*dto.VerifyResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verify"),
		logger.Op("Verify"),
	)

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrTokenMissing
	}

	hash := tokens.SHA256Base64URL(rawToken)
	p, err := s.deps.Verifications.Lookup(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		log.Error("verification lookup failed", logger.Err(err))
		return nil, err
	}
	log = log.With(logger.UserID(p.UserID))

	if p.IsVerified {
		log.Debug("already verified")
		return &dto.VerifyResult{AlreadyVerified: true}, nil
	}
	if s.deps.Now().After(p.ExpiresAt) {
		log.Debug("token expired")
		return nil, ErrTokenExpired
	}

	flipped, err := s.deps.Verifications.Consume(ctx, p.UserID, hash)
	if err != nil {
		log.Error("verification consume failed", logger.Err(err))
		return nil, err
	}
	if !flipped {
		// Otro click concurrente ganó la transición.
		return &dto.VerifyResult{AlreadyVerified: true}, nil
	}
	log.Info("email verified")
	return &dto.VerifyResult{}, nil
}

func (s *verifyService) Resend(ctx context.Context, addr string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verify"),
		logger.Op("Resend"),
	)

	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return nil
	}
	u, err := s.deps.Users.GetByEmail(ctx, addr)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("user lookup failed", logger.Err(err))
		}
		return nil
	}
	if u.IsVerified {
		return nil
	}
	if _, err := s.deps.Links.Issue(ctx, u); err != nil {
		log.Error("verification resend failed", logger.UserID(u.ID), logger.Err(err))
	}
	return nil
}
