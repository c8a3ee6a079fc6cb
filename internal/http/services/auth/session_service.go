package auth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
)

// SessionService resuelve el usuario de una sesión ya validada por el middleware.
type SessionService interface {
	Current(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type sessionService struct {
	deps Deps
}

func NewSessionService(deps Deps) SessionService {
	return &sessionService{deps: deps}
}

// Current retorna ErrUserNotFound si la cuenta se borró con la cookie todavía vigente.
func (s *sessionService) Current(ctx context.Context, userID string) (*dto.UserResponse, error) {
	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.UserResponse{UserID: u.ID, Email: u.Email, Name: u.Name, IsVerified: u.IsVerified}, nil
}
