package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/health"
)

// registerHealthRoutes: públicos, sin sesión.
func registerHealthRoutes(r chi.Router, c *ctrl.Controllers, metrics http.Handler) {
	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
}
