// Package auth contiene los controllers de registro, login, sesión y verificación.
package auth

import (
	"net/http"
	"time"

	svc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
)

// CookieConfig define la cookie de sesión (auth.session.* en config).
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite http.SameSite
	Secure   bool
}

// ParseSameSite: "lax" (default), "strict", "none".
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "strict", "Strict":
		return http.SameSiteStrictMode
	case "none", "None":
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c CookieConfig) session(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c CookieConfig) deletion() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Register *RegisterController
	Login    *LoginController
	Logout   *LogoutController
	Session  *SessionController
	Verify   *VerifyController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, cookie CookieConfig) *Controllers {
	if cookie.Name == "" {
		cookie.Name = "hellomail_session"
	}
	return &Controllers{
		Register: NewRegisterController(s.Register),
		Login:    NewLoginController(s.Login, cookie),
		Logout:   NewLogoutController(cookie),
		Session:  NewSessionController(s.Session),
		Verify:   NewVerifyController(s.Verify),
	}
}
