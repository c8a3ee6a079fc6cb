// Package router arma el árbol de rutas chi de la API.
//
// Cada dominio registra sus rutas en su propio archivo ({dominio}_routes.go) con la
// cadena de middlewares que necesita. Los middlewares globales van acá.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/auth"
	campaignsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/campaigns"
	contactsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/contacts"
	healthctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/health"
	labelsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/labels"
	smtpctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/smtp"
	websitesctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/websites"
	"github.com/dropDatabas3/hellomail/internal/http/errors"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	"github.com/dropDatabas3/hellomail/internal/rate"
)

// Controllers agrupa los aggregators de cada dominio.
type Controllers struct {
	Auth      *authctrl.Controllers
	Websites  *websitesctrl.Controllers
	Contacts  *contactsctrl.Controllers
	Labels    *labelsctrl.Controllers
	SMTP      *smtpctrl.Controllers
	Campaigns *campaignsctrl.Controllers
	Health    *healthctrl.Controllers
}

// Limiters son opcionales: nil => sin rate limiting en ese scope.
type Limiters struct {
	Global   rate.Limiter
	Login    rate.Limiter
	SMTPTest rate.Limiter
}

type Deps struct {
	Controllers Controllers

	Session    mw.SessionParser
	CookieName string
	Ownership  *mw.OwnershipCache

	Limiters    Limiters
	CORSOrigins []string
	// MaxJSONBody limita los bodies JSON (los multipart tienen su propio tope).
	MaxJSONBody int64

	// Metrics es el handler de /metrics; nil => no se expone.
	Metrics http.Handler
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// ===========================================================================
	// Globales
	// ===========================================================================
	r.Use(mw.Group(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSOrigins),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	c := deps.Controllers
	if c.Health != nil {
		registerHealthRoutes(r, c.Health, deps.Metrics)
	}
	if c.Auth != nil {
		registerAuthRoutes(r, deps)
	}
	if c.Contacts != nil {
		// /unsubscribe es público: el token es la autorización
		r.Get("/unsubscribe", c.Contacts.Unsubscribe.Unsubscribe)
	}

	// ===========================================================================
	// Con sesión
	// ===========================================================================
	r.Group(func(r chi.Router) {
		r.Use(mw.Group(
			mw.WithNoStore(),
			mw.RequireSession(deps.Session, deps.CookieName),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.Limiters.Global, KeyFunc: mw.UserRateKey, Scope: "global"}),
		)...)

		if c.Auth != nil {
			r.Get("/auth/user/validate", c.Auth.Session.Validate)
		}
		if c.Websites != nil {
			registerWebsiteRoutes(r, c.Websites, deps.MaxJSONBody)
		}

		// Todo lo que cuelga de {websiteID} pasa por WebsiteScope.
		registerContactRoutes(r, deps)
		registerLabelRoutes(r, deps)
		registerSMTPRoutes(r, deps)
		registerCampaignRoutes(r, deps)
	})

	return r
}

// scoped es la cadena común de los árboles /{area}/{websiteID}.
func scoped(deps Deps) []func(http.Handler) http.Handler {
	return mw.Group(mw.WebsiteScope(deps.Ownership))
}

// jsonBody limita el body de los endpoints JSON.
func jsonBody(max int64) func(http.Handler) http.Handler {
	if max <= 0 {
		max = 1 << 20
	}
	return mw.WithMaxBody(max)
}
