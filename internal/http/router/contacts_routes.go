package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
)

func registerContactRoutes(r chi.Router, deps Deps) {
	c := deps.Controllers.Contacts
	if c == nil {
		return
	}
	r.Route("/contacts/{websiteID}", func(r chi.Router) {
		r.Use(scoped(deps)...)

		r.Get("/", c.Contacts.List)
		r.Get("/filters", c.Contacts.Filters)
		r.Get("/import/fields", c.Import.Fields)
		// multipart: el tope lo aplica el controller
		r.Post("/import", c.Import.Import)

		r.Group(func(r chi.Router) {
			r.Use(jsonBody(deps.MaxJSONBody))
			r.Post("/", c.Contacts.Create)
			r.Get("/{contactID}", c.Contacts.Get)
			r.Patch("/{contactID}", c.Contacts.Update)
			r.Delete("/{contactID}", c.Contacts.Delete)
		})
	})
}

func registerLabelRoutes(r chi.Router, deps Deps) {
	c := deps.Controllers.Labels
	if c == nil {
		return
	}
	r.Route("/labels/{websiteID}", func(r chi.Router) {
		r.Use(scoped(deps)...)
		r.Use(jsonBody(deps.MaxJSONBody))
		r.Get("/", c.Labels.List)
		r.Post("/", c.Labels.Create)
		r.Patch("/{labelID}", c.Labels.Update)
		r.Delete("/{labelID}", c.Labels.Delete)
	})
}

func registerSMTPRoutes(r chi.Router, deps Deps) {
	c := deps.Controllers.SMTP
	if c == nil {
		return
	}
	probe := mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.Limiters.SMTPTest, KeyFunc: mw.UserRateKey, Scope: "smtp_test"})

	r.Route("/smtp/{websiteID}", func(r chi.Router) {
		r.Use(scoped(deps)...)
		r.Use(jsonBody(deps.MaxJSONBody))
		r.Get("/", c.SMTP.List)
		// create y test abren una conexión SMTP real
		r.With(probe).Post("/", c.SMTP.Create)
		r.With(probe).Post("/test", c.SMTP.Test)
		r.Post("/{configID}/default", c.SMTP.SetDefault)
		r.Delete("/{configID}", c.SMTP.Delete)
	})
}
