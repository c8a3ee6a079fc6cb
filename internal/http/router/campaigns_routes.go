package router

import (
	"github.com/go-chi/chi/v5"
)

func registerCampaignRoutes(r chi.Router, deps Deps) {
	c := deps.Controllers.Campaigns
	if c == nil {
		return
	}
	r.Route("/emails/{websiteID}", func(r chi.Router) {
		r.Use(scoped(deps)...)

		r.Get("/", c.Campaigns.List)
		r.Post("/send", c.Send.Send)
		r.Get("/{campaignID}", c.Campaigns.Get)
		r.Delete("/{campaignID}", c.Campaigns.Delete)

		r.Group(func(r chi.Router) {
			r.Use(jsonBody(deps.MaxJSONBody))
			r.Post("/drafts", c.Drafts.Create)
			r.Patch("/drafts/{campaignID}", c.Drafts.Update)
		})
	})
}
