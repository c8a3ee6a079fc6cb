package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// VerifyController maneja GET /verify/email y POST /verify/email/resend.
type VerifyController struct {
	service svc.VerifyService
}

func NewVerifyController(service svc.VerifyService) *VerifyController {
	return &VerifyController{service: service}
}

func (c *VerifyController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := c.service.Verify(ctx, r.URL.Query().Get("token"))
	if err != nil {
		logger.From(ctx).Debug("verify failed", logger.Layer("controller"), logger.Op("VerifyController.Verify"), logger.Err(err))
		switch {
		case errors.Is(err, svc.ErrTokenMissing):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("token is required"))
		case errors.Is(err, svc.ErrTokenInvalid):
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		case errors.Is(err, svc.ErrTokenExpired):
			httperrors.WriteError(w, httperrors.ErrTokenExpired.WithDetail("request a new verification email"))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	msg := "Email verified"
	if res.AlreadyVerified {
		msg = "Email already verified"
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: msg})
}

// Resend siempre responde 204, exista o no el email.
func (c *VerifyController) Resend(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Resend(r.Context(), req.Email); err != nil {
		logger.From(r.Context()).Warn("resend failed", logger.Err(err))
	}
	helpers.NoContent(w)
}
