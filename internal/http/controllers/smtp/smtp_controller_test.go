package smtp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/smtp"
	"github.com/dropDatabas3/hellomail/internal/security/secretbox"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

func TestSMTPEndpoints(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)
	box, err := secretbox.New(strings.Repeat("k", 32))
	require.NoError(t, err)

	var probeErr error
	probe := func(context.Context, email.SMTPConfig, string) error { return probeErr }
	c := NewControllers(svc.NewServices(svc.Deps{Configs: st.SMTPConfigs, Secrets: box, Probe: probe}))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			ctx := mw.WithUser(req.Context(), mw.SessionUser{ID: u.ID, Email: u.Email})
			next.ServeHTTP(rw, req.WithContext(mw.WithWebsiteID(ctx, w.ID)))
		})
	})
	r.Get("/smtp/{websiteID}", c.SMTP.List)
	r.Post("/smtp/{websiteID}", c.SMTP.Create)
	r.Post("/smtp/{websiteID}/test", c.SMTP.Test)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	probeErr = errors.New("dial tcp: connection refused")
	rec := do(http.MethodPost, "/smtp/"+w.ID+"/test", `{"host":"smtp.x.test","port":587}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SMTP_TEST_FAILED")
	assert.Contains(t, rec.Body.String(), "connection refused")

	probeErr = nil
	rec = do(http.MethodPost, "/smtp/"+w.ID, `{"name":"main","host":"smtp.x.test","port":587,"user":"u","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = do(http.MethodGet, "/smtp/"+w.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_default":true`)
	assert.NotContains(t, rec.Body.String(), "password")
}
