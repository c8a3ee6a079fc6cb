// Package labels contiene el controller de /labels/{websiteID}.
package labels

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/label"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/labels"
)

type Controllers struct {
	Labels *LabelsController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Labels: NewLabelsController(s.Labels)}
}

type LabelsController struct {
	service svc.Service
}

func NewLabelsController(service svc.Service) *LabelsController {
	return &LabelsController{service: service}
}

func (c *LabelsController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.List(r.Context(), mw.GetWebsiteID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *LabelsController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.Request
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	out, err := c.service.Create(r.Context(), mw.GetWebsiteID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, out)
}

func (c *LabelsController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.Request
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	out, err := c.service.Update(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "labelID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *LabelsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "labelID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingName):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name is required"))
	case errors.Is(err, svc.ErrInvalidColor):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(svc.ErrInvalidColor.Error()))
	case errors.Is(err, svc.ErrNameTaken):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists.WithDetail("a label with this name already exists"))
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrLabelNotFound)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
