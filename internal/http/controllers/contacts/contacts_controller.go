package contacts

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/contact"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/contacts"
)

// ContactsController maneja /contacts/{websiteID} (detrás de WebsiteScope).
type ContactsController struct {
	service svc.ContactService
}

func NewContactsController(service svc.ContactService) *ContactsController {
	return &ContactsController{service: service}
}

func filterFrom(r *http.Request) repository.ContactFilter {
	q := r.URL.Query()
	return repository.ContactFilter{
		Gender:       strings.TrimSpace(q.Get("gender")),
		Country:      strings.TrimSpace(q.Get("country")),
		Tag:          strings.TrimSpace(q.Get("tag")),
		LabelID:      strings.TrimSpace(q.Get("label_id")),
		Search:       strings.TrimSpace(q.Get("search")),
		Unsubscribed: helpers.QueryBool(r, "unsubscribed"),
		Limit:        helpers.QueryInt(r, "limit", svc.DefaultListLimit, svc.MaxListLimit),
		Offset:       helpers.QueryInt(r, "offset", 0, 0),
	}
}

func (c *ContactsController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.List(r.Context(), mw.GetWebsiteID(r.Context()), filterFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *ContactsController) Filters(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.Filters(r.Context(), mw.GetWebsiteID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *ContactsController) Create(w http.ResponseWriter, r *http.Request) {
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

func (c *ContactsController) Get(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.Get(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *ContactsController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.Request
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	out, err := c.service.Update(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "contactID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *ContactsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "contactID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}
