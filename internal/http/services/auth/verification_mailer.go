package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	tokens "github.com/dropDatabas3/hellomail/internal/security/token"
)

// verifyTokenBytes son los bytes aleatorios del token (base64url en el link).
const verifyTokenBytes = 32

// verificationMailer emite un token nuevo (reemplaza los anteriores) y manda el link.
type verificationMailer struct {
	deps Deps
}

// Issue persiste el hash del token y envía el mail. Un fallo de envío no es fatal:
// el usuario puede pedir el reenvío. Retorna el link para el echo de debug.
func (m *verificationMailer) Issue(ctx context.Context, u *repository.User) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verification"),
		logger.UserID(u.ID),
	)

	raw, err := tokens.GenerateOpaqueToken(verifyTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	exp := m.deps.Now().Add(m.deps.VerifyTTL)
	if err := m.deps.Verifications.Replace(ctx, u.ID, tokens.SHA256Base64URL(raw), exp); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	link := strings.TrimRight(m.deps.BaseURL, "/") + "/verify/email?token=" + url.QueryEscape(raw)

	msg := email.Message{
		From:    m.deps.From,
		To:      u.Email,
		Subject: "Verify your email",
		Text:    "Open this link to verify your account: " + link,
	}
	if m.deps.Templates != nil {
		html, text, err := m.deps.Templates.RenderVerify(email.VerifyVars{
			UserEmail: u.Email,
			Name:      u.Name,
			Link:      link,
			TTL:       m.deps.VerifyTTL.String(),
		})
		if err != nil {
			log.Warn("verify template render failed, using plain text", logger.Err(err))
		} else {
			msg.HTML, msg.Text = html, text
		}
	}

	if err := m.deps.Mailer.Send(ctx, msg); err != nil {
		log.Warn("verification email failed (soft)", logger.Err(err))
	} else {
		log.Info("verification email sent")
	}
	return link, nil
}
