package auth

import (
	"errors"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// LoginController maneja POST /auth/login.
type LoginController struct {
	service svc.LoginService
	cookie  CookieConfig
}

func NewLoginController(service svc.LoginService, cookie CookieConfig) *LoginController {
	return &LoginController{service: service, cookie: cookie}
}

// Login setea la cookie de sesión y responde el usuario.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeLoginError(w, err)
		return
	}

	http.SetCookie(w, c.cookie.session(result.Token, time.Duration(result.ExpiresIn)*time.Second))
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{
		UserID:     result.UserID,
		Email:      result.Email,
		IsVerified: result.IsVerified,
	})
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email and password are required"))
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrNotVerified):
		httperrors.WriteError(w, httperrors.ErrAccountNotVerified)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}

// LogoutController maneja POST /auth/logout. La sesión es stateless: basta con borrar la cookie.
type LogoutController struct {
	cookie CookieConfig
}

func NewLogoutController(cookie CookieConfig) *LogoutController {
	return &LogoutController{cookie: cookie}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.cookie.deletion())
	helpers.NoContent(w)
}
