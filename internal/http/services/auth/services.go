// Package auth contiene los services de registro, login, sesión y verificación de email.
package auth

import (
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/jwt"
)

// Deps contiene las dependencias del dominio auth.
type Deps struct {
	Users         repository.UserRepository
	Verifications repository.EmailVerificationRepository
	Signer        *jwt.Signer

	// Mailer envía los mails de verificación (email.LogSender si no hay SMTP del sistema).
	Mailer    email.Sender
	Templates *email.Templates
	From      string

	// BaseURL público de la API para armar el link de verificación.
	BaseURL           string
	VerifyTTL         time.Duration
	PasswordMinLength int
	// DebugEchoLinks devuelve el link en X-Debug-Verify-Link (nunca en prod).
	DebugEchoLinks bool

	Now func() time.Time
}

// Services agrupa los services del dominio auth.
type Services struct {
	Register RegisterService
	Login    LoginService
	Session  SessionService
	Verify   VerifyService
}

// NewServices crea el aggregator. El mailer de verificación lo comparten register y resend.
func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.VerifyTTL <= 0 {
		d.VerifyTTL = 48 * time.Hour
	}
	if d.PasswordMinLength <= 0 {
		d.PasswordMinLength = 8
	}
	if d.Mailer == nil {
		d.Mailer = email.LogSender{}
	}
	links := &verificationMailer{deps: d}
	return Services{
		Register: NewRegisterService(RegisterDeps{Deps: d, Links: links}),
		Login:    NewLoginService(d),
		Session:  NewSessionService(d),
		Verify:   NewVerifyService(VerifyDeps{Deps: d, Links: links}),
	}
}
