package websites

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/websites"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

func router(t *testing.T, userID string, st *memory.Store) http.Handler {
	t.Helper()
	c := NewControllers(svc.NewServices(svc.Deps{Websites: st.Websites}))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(mw.WithUser(req.Context(), mw.SessionUser{ID: userID})))
		})
	})
	r.Get("/websites", c.Websites.List)
	r.Post("/websites", c.Websites.Create)
	r.Get("/websites/{websiteID}", c.Websites.Get)
	r.Patch("/websites/{websiteID}", c.Websites.Update)
	r.Delete("/websites/{websiteID}", c.Websites.Delete)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebsitesEndpoints(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	owner, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	stranger, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "s@x.test"})
	require.NoError(t, err)
	h := router(t, owner.ID, st)

	rec := do(h, http.MethodPost, "/websites", `{"company_name":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/websites", `{"company_name":"Acme","domain":"https://acme.io/"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ws map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ws))
	id := ws["website_id"].(string)
	assert.Equal(t, "acme.io", ws["domain"])

	rec = do(h, http.MethodPatch, "/websites/"+id, `{"field":"retail"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/websites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"retail"`)

	rec = do(router(t, stranger.ID, st), http.MethodGet, "/websites/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "WEBSITE_NOT_FOUND")

	rec = do(h, http.MethodDelete, "/websites/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
