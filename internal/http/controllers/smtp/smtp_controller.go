// Package smtp contiene el controller de /smtp/{websiteID}.
package smtp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/smtp"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/smtp"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

type Controllers struct {
	SMTP *SMTPController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{SMTP: NewSMTPController(s.SMTP)}
}

type SMTPController struct {
	service svc.Service
}

func NewSMTPController(service svc.Service) *SMTPController {
	return &SMTPController{service: service}
}

func callerEmail(r *http.Request) string {
	u, _ := mw.GetUser(r.Context())
	return u.Email
}

func (c *SMTPController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.List(r.Context(), mw.GetWebsiteID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Create prueba la conexión y, si anda, guarda la config.
func (c *SMTPController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	out, err := c.service.Create(r.Context(), mw.GetWebsiteID(r.Context()), callerEmail(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.From(r.Context()).Info("smtp config created", logger.String("config_id", out.ConfigID))
	helpers.WriteJSON(w, http.StatusCreated, out)
}

func (c *SMTPController) Test(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Test(r.Context(), callerEmail(r), req); err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteMessage(w, http.StatusOK, "SMTP connection successful")
}

func (c *SMTPController) SetDefault(w http.ResponseWriter, r *http.Request) {
	if err := c.service.SetDefault(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "configID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}

func (c *SMTPController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "configID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	var pe *svc.ProbeError
	switch {
	case errors.As(err, &pe):
		detail := pe.Hint + " (" + pe.Err.Error() + ")"
		httperrors.WriteError(w, httperrors.ErrSMTPTestFailed.WithDetail(detail).WithCause(err))
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("host and a valid port are required"))
	case errors.Is(err, svc.ErrInvalidTarget):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail("test_email is not a valid address"))
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrSMTPConfigNotFound)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
