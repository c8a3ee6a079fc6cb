package labels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/labels"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

func TestLabelEndpoints(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)

	c := NewControllers(svc.NewServices(svc.Deps{Labels: st.Labels}))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(rw, req.WithContext(mw.WithWebsiteID(req.Context(), w.ID)))
		})
	})
	r.Get("/labels/{websiteID}", c.Labels.List)
	r.Post("/labels/{websiteID}", c.Labels.Create)
	r.Delete("/labels/{websiteID}/{labelID}", c.Labels.Delete)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/labels/"+w.ID, `{"name":"vip","color":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_FORMAT")

	rec = do(http.MethodPost, "/labels/"+w.ID, `{"name":"vip","color":"#00F"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"color":"#00f"`)

	rec = do(http.MethodPost, "/labels/"+w.ID, `{"name":"VIP","color":"#000"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(http.MethodDelete, "/labels/"+w.ID+"/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "LABEL_NOT_FOUND")
}
