// Package websites contiene el controller de /websites.
package websites

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/website"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/websites"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

type Controllers struct {
	Websites *WebsitesController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Websites: NewWebsitesController(s.Websites)}
}

// WebsitesController: todas las operaciones quedan limitadas al usuario de la sesión.
type WebsitesController struct {
	service svc.Service
}

func NewWebsitesController(service svc.Service) *WebsitesController {
	return &WebsitesController{service: service}
}

func (c *WebsitesController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.List(r.Context(), mw.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Items: items})
}

func (c *WebsitesController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	ws, err := c.service.Create(r.Context(), mw.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.From(r.Context()).Info("website created", logger.WebsiteID(ws.WebsiteID))
	helpers.WriteJSON(w, http.StatusCreated, ws)
}

func (c *WebsitesController) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := c.service.Get(r.Context(), mw.GetUserID(r.Context()), chi.URLParam(r, "websiteID"))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ws)
}

func (c *WebsitesController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	ws, err := c.service.Update(r.Context(), mw.GetUserID(r.Context()), chi.URLParam(r, "websiteID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ws)
}

func (c *WebsitesController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), mw.GetUserID(r.Context()), chi.URLParam(r, "websiteID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("company_name and domain are required"))
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrWebsiteNotFound)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
