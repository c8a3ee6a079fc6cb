package helpers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	require.True(t, ReadJSON(rec, req, &v))
	assert.Equal(t, "a@b.co", v.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	require.False(t, ReadJSON(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_JSON")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	require.False(t, ReadJSON(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadJSON_TooLarge(t *testing.T) {
	big := `{"email":"` + strings.Repeat("a", MaxJSONBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	var v map[string]any
	require.False(t, ReadJSON(rec, req, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("attachments", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMultipartHelpers(t *testing.T) {
	req := multipartRequest(t, map[string]string{
		"cc":         "a@x.io, b@y.io",
		"bcc":        `["c@z.io"]`,
		"recipients": `{"all":true}`,
		"flag":       "on",
	}, map[string]string{"a.txt": "hello"})
	rec := httptest.NewRecorder()
	require.True(t, ParseMultipart(rec, req, 1<<20))

	cc, err := FormList(req, "cc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.io", "b@y.io"}, cc)

	bcc, err := FormList(req, "bcc")
	require.NoError(t, err)
	assert.Equal(t, []string{"c@z.io"}, bcc)

	var sel struct {
		All bool `json:"all"`
	}
	require.NoError(t, FormJSON(req, "recipients", &sel))
	assert.True(t, sel.All)
	assert.True(t, FormBool(req, "flag", false))
	assert.True(t, FormBool(req, "missing", true))

	files, err := ReadFiles(req, "attachments")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Filename)
	assert.Equal(t, "hello", string(files[0].Data))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=x&unsubscribed=false", nil)
	assert.Equal(t, 500, QueryInt(req, "limit", 50, 500))
	assert.Equal(t, 0, QueryInt(req, "offset", 0, 0))
	require.NotNil(t, QueryBool(req, "unsubscribed"))
	assert.False(t, *QueryBool(req, "unsubscribed"))
	assert.Nil(t, QueryBool(req, "nope"))
}
