package middlewares

import (
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/jwt"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// SessionParser valida el contenido de la cookie.
type SessionParser interface {
	ParseSession(raw string) (*jwt.SessionClaims, error)
}

// RequireSession exige una cookie de sesión válida e inyecta el usuario en el contexto
// (y en el logger scoped). Sin cookie => 401 UNAUTHORIZED; vencida => 401 SESSION_EXPIRED.
func RequireSession(p SessionParser, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			claims, err := p.ParseSession(c.Value)
			if err != nil {
				if stderrors.Is(err, jwt.ErrExpired) {
					errors.WriteError(w, errors.ErrSessionExpired)
					return
				}
				errors.WriteError(w, errors.ErrUnauthorized.WithCause(err))
				return
			}

			ctx := WithUser(r.Context(), SessionUser{ID: claims.Subject, Email: claims.Email})
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
