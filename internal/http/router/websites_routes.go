package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/websites"
)

// registerWebsiteRoutes: la pertenencia la resuelve el service (website ajeno => 404).
func registerWebsiteRoutes(r chi.Router, c *ctrl.Controllers, maxBody int64) {
	r.Route("/websites", func(r chi.Router) {
		r.Use(jsonBody(maxBody))
		r.Get("/", c.Websites.List)
		r.Post("/", c.Websites.Create)
		r.Get("/{websiteID}", c.Websites.Get)
		r.Patch("/{websiteID}", c.Websites.Update)
		r.Delete("/{websiteID}", c.Websites.Delete)
	})
}
