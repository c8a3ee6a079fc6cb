package campaigns

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
)

type DraftController struct {
	service svc.DraftService
}

func NewDraftController(service svc.DraftService) *DraftController {
	return &DraftController{service: service}
}

// Create maneja POST /emails/{websiteID}/drafts.
func (c *DraftController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DraftRequest
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

// Update maneja PATCH /emails/{websiteID}/drafts/{campaignID}.
func (c *DraftController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.DraftRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	out, err := c.service.Update(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "campaignID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
