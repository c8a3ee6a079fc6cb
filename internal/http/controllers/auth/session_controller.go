package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
)

// SessionController maneja GET /auth/user/validate (detrás de RequireSession).
type SessionController struct {
	service svc.SessionService
}

func NewSessionController(service svc.SessionService) *SessionController {
	return &SessionController{service: service}
}

func (c *SessionController) Validate(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	u, err := c.service.Current(r.Context(), userID)
	if err != nil {
		if errors.Is(err, svc.ErrUserNotFound) {
			// cookie válida de un usuario que ya no existe
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}
