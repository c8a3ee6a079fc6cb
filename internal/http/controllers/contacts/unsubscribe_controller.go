package contacts

import (
	"errors"
	"html/template"
	"net/http"

	svc "github.com/dropDatabas3/hellomail/internal/http/services/contacts"
)

var unsubscribePage = template.Must(template.New("unsubscribe").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.Title}}</title></head>
<body style="font-family:sans-serif;max-width:480px;margin:64px auto;text-align:center;color:#333">
<h1 style="font-size:22px">{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

type pageData struct {
	Title   string
	Message string
}

// UnsubscribeController maneja GET /unsubscribe?token= (público, sin sesión).
type UnsubscribeController struct {
	service svc.UnsubscribeService
}

func NewUnsubscribeController(service svc.UnsubscribeService) *UnsubscribeController {
	return &UnsubscribeController{service: service}
}

func (c *UnsubscribeController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := pageData{Title: "You have been unsubscribed", Message: "You will no longer receive these emails."}

	if err := c.service.Unsubscribe(r.Context(), r.URL.Query().Get("token")); err != nil {
		status = http.StatusBadRequest
		data = pageData{Title: "Invalid link", Message: "This unsubscribe link is invalid or incomplete."}
		if !errors.Is(err, svc.ErrTokenInvalid) {
			status = http.StatusInternalServerError
			data = pageData{Title: "Something went wrong", Message: "Please try again in a few minutes."}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = unsubscribePage.Execute(w, data)
}
