package campaigns

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
)

type CampaignsController struct {
	service svc.QueryService
}

func NewCampaignsController(service svc.QueryService) *CampaignsController {
	return &CampaignsController{service: service}
}

// List maneja GET /emails/{websiteID}?status=draft|scheduled|sending|sent|failed.
func (c *CampaignsController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.List(r.Context(), mw.GetWebsiteID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *CampaignsController) Get(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.Get(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *CampaignsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), mw.GetWebsiteID(r.Context()), chi.URLParam(r, "campaignID")); err != nil {
		writeError(w, err)
		return
	}
	helpers.NoContent(w)
}
