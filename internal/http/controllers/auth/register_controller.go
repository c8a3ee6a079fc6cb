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

// DebugVerifyHeader lleva el link de verificación cuando email.debug_echo_links está activo.
const DebugVerifyHeader = "X-Debug-Verify-Link"

// RegisterController maneja POST /auth/register.
type RegisterController struct {
	service svc.RegisterService
}

func NewRegisterController(service svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeRegisterError(w, err)
		return
	}

	if result.VerifyLink != "" {
		w.Header().Set(DebugVerifyHeader, result.VerifyLink)
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		UserID:     result.UserID,
		Email:      result.Email,
		IsVerified: result.IsVerified,
	})
	log.Info("user registered", logger.UserID(result.UserID))
}

func writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email and password are required"))
	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail("invalid email address"))
	case errors.Is(err, svc.ErrPasswordTooWeak):
		httperrors.WriteError(w, httperrors.ErrPasswordTooWeak)
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
