package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	svc "github.com/dropDatabas3/hellomail/internal/http/services/health"
)

func TestReadyz(t *testing.T) {
	var dbErr error
	c := NewControllers(svc.NewServices(svc.Deps{Checks: map[string]svc.Pinger{
		"postgres": svc.PingFunc(func(context.Context) error { return dbErr }),
	}}))

	rec := httptest.NewRecorder()
	c.Health.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	dbErr = errors.New("connection refused")
	rec = httptest.NewRecorder()
	c.Health.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	c.Health.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
