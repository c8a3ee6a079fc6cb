package health

import (
	"net/http"

	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/health"
)

type HealthController struct {
	service svc.Service
}

func NewHealthController(service svc.Service) *HealthController {
	return &HealthController{service: service}
}

// Healthz es liveness: el proceso responde, sin tocar dependencias.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz chequea base, cache y broker. 503 si alguno falla.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	res := c.service.Ready(r.Context())
	status := http.StatusOK
	if !res.Ready() {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, res)
}
