package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
)

// registerAuthRoutes registra los endpoints públicos de auth y verificación.
// /auth/user/validate necesita sesión y se registra en el grupo autenticado.
func registerAuthRoutes(r chi.Router, deps Deps) {
	c := deps.Controllers.Auth

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore(), jsonBody(deps.MaxJSONBody))

		// POST /auth/register, /auth/login: rate limit por IP
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.Limiters.Login, KeyFunc: mw.IPRateKey, Scope: "login"}))
			r.Post("/auth/register", c.Register.Register)
			r.Post("/auth/login", c.Login.Login)
			r.Post("/verify/email/resend", c.Verify.Resend)
		})

		r.Post("/auth/logout", c.Logout.Logout)
		r.Get("/verify/email", c.Verify.Verify)
	})
}
