package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	authctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/health"
	labelsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/labels"
	websitesctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/websites"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	authsvc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
	healthsvc "github.com/dropDatabas3/hellomail/internal/http/services/health"
	labelssvc "github.com/dropDatabas3/hellomail/internal/http/services/labels"
	websitessvc "github.com/dropDatabas3/hellomail/internal/http/services/websites"
	"github.com/dropDatabas3/hellomail/internal/jwt"
	"github.com/dropDatabas3/hellomail/internal/rate"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

const cookieName = "hm_test"

type testAPI struct {
	handler http.Handler
	cookie  *http.Cookie
	own     string
	foreign string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	signer := jwt.NewSigner(strings.Repeat("s", 32), "hellomail", time.Hour)
	tpl, err := email.LoadTemplates()
	require.NoError(t, err)

	owner, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "owner@x.test"})
	require.NoError(t, err)
	other, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "other@x.test"})
	require.NoError(t, err)
	own, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: owner.ID, CompanyName: "Acme"})
	require.NoError(t, err)
	foreign, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: other.ID, CompanyName: "Other"})
	require.NoError(t, err)

	ownership := &mw.OwnershipCache{Websites: st.Websites, Cache: cache.NewMemory("test:", time.Minute)}
	auth := authsvc.NewServices(authsvc.Deps{
		Users:         st.Users,
		Verifications: st.Verifications,
		Signer:        signer,
		Mailer:        email.LogSender{},
		Templates:     tpl,
		From:          "no-reply@x.test",
		BaseURL:       "http://localhost:8080",
	})

	h := New(Deps{
		Controllers: Controllers{
			Auth:     authctrl.NewControllers(auth, authctrl.CookieConfig{Name: cookieName}),
			Websites: websitesctrl.NewControllers(websitessvc.NewServices(websitessvc.Deps{Websites: st.Websites, Ownership: ownership})),
			Labels:   labelsctrl.NewControllers(labelssvc.NewServices(labelssvc.Deps{Labels: st.Labels})),
			Health:   healthctrl.NewControllers(healthsvc.NewServices(healthsvc.Deps{})),
		},
		Session:    signer,
		CookieName: cookieName,
		Ownership:  ownership,
		Limiters:   Limiters{Login: rate.NewMemoryLimiter(1, time.Minute)},
	})

	token, _, err := signer.IssueSession(owner.ID, owner.Email)
	require.NoError(t, err)
	return &testAPI{
		handler: h,
		cookie:  &http.Cookie{Name: cookieName, Value: token},
		own:     own.ID,
		foreign: foreign.ID,
	}
}

func (a *testAPI) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = a.do(http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/nope", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ROUTE_NOT_FOUND")

	rec = a.do(http.MethodDelete, "/healthz", "", false)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "METHOD_NOT_ALLOWED")
}

func TestSessionRequired(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/websites", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/websites", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), a.own)
	assert.NotContains(t, rec.Body.String(), a.foreign)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = a.do(http.MethodGet, "/auth/user/validate", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebsiteScope(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/labels/"+a.own, "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/labels/"+a.own, `{"name":"vip","color":"#123456"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/labels/"+a.foreign, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "WEBSITE_NOT_FOUND")
}

func TestLoginRateLimited(t *testing.T) {
	a := newTestAPI(t)
	body := `{"email":"ghost@x.test","password":"whatever-123"}`

	rec := a.do(http.MethodPost, "/auth/login", body, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/auth/login", body, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
