package campaigns

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
	"github.com/dropDatabas3/hellomail/internal/queue"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

type nopQueue struct{ jobs int }

func (q *nopQueue) Publish(context.Context, queue.Job) error {
	q.jobs++
	return nil
}

type env struct {
	router  http.Handler
	store   *memory.Store
	queue   *nopQueue
	website string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)

	q := &nopQueue{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewControllers(svc.NewServices(svc.Deps{
		Campaigns:   st.Campaigns,
		Recipients:  st.Recipients,
		SMTPConfigs: st.SMTPConfigs,
		Queue:       q,
		Now:         func() time.Time { return now },
	}), 1<<20)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(rw, req.WithContext(mw.WithWebsiteID(req.Context(), w.ID)))
		})
	})
	r.Route("/emails/{websiteID}", func(r chi.Router) {
		r.Get("/", c.Campaigns.List)
		r.Post("/send", c.Send.Send)
		r.Post("/drafts", c.Drafts.Create)
		r.Patch("/drafts/{campaignID}", c.Drafts.Update)
		r.Get("/{campaignID}", c.Campaigns.Get)
		r.Delete("/{campaignID}", c.Campaigns.Delete)
	})
	return &env{router: r, store: st, queue: q, website: w.ID}
}

func (e *env) send(t *testing.T, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mp.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mp.CreateFormFile("attachments", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/emails/"+e.website+"/send", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func baseForm() map[string]string {
	return map[string]string{
		"subject":    "Spring sale",
		"body":       "<p>Hi {{first_name}}</p>",
		"from_email": "news@acme.test",
		"recipients": `{"all":true}`,
		"tags":       "promo, spring",
		"send_type":  "immediate",
	}
}

func TestSendImmediateReturnsAccepted(t *testing.T) {
	e := newEnv(t)
	rec := e.send(t, baseForm(), map[string]string{"terms.txt": "hello"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var out struct {
		CampaignID string `json:"campaign_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "sending", out.Status)
	assert.Equal(t, 1, e.queue.jobs)

	rec = e.do(http.MethodGet, "/emails/"+e.website+"/"+out.CampaignID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"terms.txt"`)
	assert.Contains(t, rec.Body.String(), `"promo"`)

	rec = e.do(http.MethodDelete, "/emails/"+e.website+"/"+out.CampaignID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CAMPAIGN_LOCKED")
}

func TestSendScheduleErrors(t *testing.T) {
	e := newEnv(t)

	form := baseForm()
	form["send_type"] = "scheduled"
	rec := e.send(t, form, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SCHEDULE_REQUIRED")

	form["scheduled_at"] = "2020-01-01T00:00:00Z"
	rec = e.send(t, form, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_SCHEDULE")

	form["scheduled_at"] = "2026-03-11T09:30"
	form["timezone"] = "America/Argentina/Buenos_Aires"
	rec = e.send(t, form, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"scheduled"`)
	assert.Equal(t, 0, e.queue.jobs)
}

func TestSendRejectsBadForm(t *testing.T) {
	e := newEnv(t)

	form := baseForm()
	form["recipients"] = "{nope"
	rec := e.send(t, form, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipients")

	form = baseForm()
	form["smtp_config_id"] = "missing"
	rec = e.send(t, form, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPost, "/emails/"+e.website+"/send", `{"subject":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraftEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/emails/"+e.website+"/drafts", `{"subject":"Draft one"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var draft struct {
		CampaignID string `json:"campaign_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Equal(t, "draft", draft.Status)

	rec = e.do(http.MethodPatch, "/emails/"+e.website+"/drafts/"+draft.CampaignID, `{"body":"<p>hola</p>"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subject":"Draft one"`)

	rec = e.do(http.MethodGet, "/emails/"+e.website+"/?status=draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), draft.CampaignID)

	rec = e.do(http.MethodDelete, "/emails/"+e.website+"/"+draft.CampaignID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, "/emails/"+e.website+"/"+draft.CampaignID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CAMPAIGN_NOT_FOUND")
}
