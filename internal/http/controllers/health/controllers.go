// Package health contiene los controllers de /healthz y /readyz.
package health

import svc "github.com/dropDatabas3/hellomail/internal/http/services/health"

// Controllers agrupa los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Health: NewHealthController(s.Health),
	}
}
