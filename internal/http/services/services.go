// Package services es el composition root de los services HTTP.
//
// Cada dominio vive en su sub-paquete con su propio aggregator:
//
//	services/{dominio}/
//	  - {nombre}_service.go  implementación
//	  - services.go          Deps + Services + NewServices
//
// Este archivo los junta. app.go arma Deps una sola vez y el router recibe *Services.
// ═══════════════════════════════════════════════════════════════════════════════
package services

import (
	"github.com/dropDatabas3/hellomail/internal/http/services/auth"
	"github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
	"github.com/dropDatabas3/hellomail/internal/http/services/contacts"
	"github.com/dropDatabas3/hellomail/internal/http/services/health"
	"github.com/dropDatabas3/hellomail/internal/http/services/labels"
	"github.com/dropDatabas3/hellomail/internal/http/services/smtp"
	"github.com/dropDatabas3/hellomail/internal/http/services/websites"
)

// Deps contiene las dependencias de cada dominio ya armadas.
type Deps struct {
	Auth      auth.Deps
	Websites  websites.Deps
	Contacts  contacts.Deps
	Labels    labels.Deps
	SMTP      smtp.Deps
	Campaigns campaigns.Deps
	Health    health.Deps
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Auth      auth.Services
	Websites  websites.Services
	Contacts  contacts.Services
	Labels    labels.Services
	SMTP      smtp.Services
	Campaigns campaigns.Services
	Health    health.Services
}

// New es el único lugar donde se instancian los services.
func New(d Deps) *Services {
	return &Services{
		Auth:      auth.NewServices(d.Auth),
		Websites:  websites.NewServices(d.Websites),
		Contacts:  contacts.NewServices(d.Contacts),
		Labels:    labels.NewServices(d.Labels),
		SMTP:      smtp.NewServices(d.SMTP),
		Campaigns: campaigns.NewServices(d.Campaigns),
		Health:    health.NewServices(d.Health),
	}
}
