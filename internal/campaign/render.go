package campaign

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"sort"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// Rendered es el contenido final para un destinatario.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

var brandingTpl = template.Must(template.New("branding").Parse(`<table role="presentation" width="100%" style="margin:16px 0;font-family:sans-serif;font-size:12px;color:#666;text-align:center;"><tr><td>
{{- with .Company}}{{if .Name}}<strong>{{.Name}}</strong><br>{{end}}{{if .Address}}{{.Address}}<br>{{end}}{{if .Phone}}{{.Phone}} {{end}}{{if .Email}}<a href="mailto:{{.Email}}">{{.Email}}</a> {{end}}{{if .Website}}<a href="{{.Website}}">{{.Website}}</a>{{end}}{{end}}
{{- if .Social}}<br>{{range .Social}}<a href="{{.URL}}" style="margin:0 4px;">{{.Network}}</a>{{end}}{{end -}}
</td></tr></table>`))

var unsubscribeTpl = template.Must(template.New("unsubscribe").Parse(`<p style="font-family:sans-serif;font-size:11px;color:#999;text-align:center;">You received this email because you are subscribed to {{.Name}}. <a href="{{.URL}}">Unsubscribe</a></p>`))

type social struct {
	Network string
	URL     string
}

// Branding arma el bloque de footer (empresa + redes). Vacío si no hay nada que mostrar.
func Branding(info repository.CompanyInfo, networks map[string]string) string {
	var list []social
	for n, u := range networks {
		list = append(list, social{Network: n, URL: u})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Network < list[j].Network })

	if info == (repository.CompanyInfo{}) && len(list) == 0 {
		return ""
	}
	var b bytes.Buffer
	_ = brandingTpl.Execute(&b, struct {
		Company repository.CompanyInfo
		Social  []social
	}{info, list})
	return b.String()
}

// Render personaliza el body de la campaña para un contacto.
// Los placeholders {{first_name}}, {{last_name}}, {{email}} y {{company}} se escapan como HTML.
func Render(c *repository.Campaign, ct repository.Contact, unsubscribeURL string) Rendered {
	company := c.CompanyInfo.Name
	if company == "" {
		company = c.FromName
	}
	vars := map[string]string{
		"first_name": ct.FirstName,
		"last_name":  ct.LastName,
		"email":      ct.Email,
		"company":    company,
	}

	body := fill(c.Body, vars, html.EscapeString)
	brand := Branding(c.CompanyInfo, c.SocialMedia)

	var b strings.Builder
	if brand != "" && hasLocation(c.FooterLocations, "top") {
		b.WriteString(brand)
	}
	b.WriteString(body)
	if brand != "" && hasLocation(c.FooterLocations, "bottom") {
		b.WriteString(brand)
	}
	if unsubscribeURL != "" {
		var u bytes.Buffer
		_ = unsubscribeTpl.Execute(&u, struct{ Name, URL string }{company, unsubscribeURL})
		b.WriteString(u.String())
	}

	text := fill(PlainText(c.Body), vars, func(s string) string { return s })
	if unsubscribeURL != "" {
		text += "\n\nUnsubscribe: " + unsubscribeURL
	}

	return Rendered{
		Subject: fill(c.Subject, vars, func(s string) string { return s }),
		HTML:    b.String(),
		Text:    text,
	}
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

func fill(s string, vars map[string]string, esc func(string) string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			return m
		}
		return esc(v)
	})
}

func hasLocation(locs []string, want string) bool {
	for _, l := range locs {
		if l == want {
			return true
		}
	}
	return false
}

var (
	blockRe  = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/h[1-6]|/li|/tr)\s*/?>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spacesRe = regexp.MustCompile(`[ \t]+`)
	linesRe  = regexp.MustCompile(`\n{3,}`)
)

// PlainText es una versión texto aproximada del HTML (alternativa multipart).
func PlainText(h string) string {
	s := blockRe.ReplaceAllString(h, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spacesRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(linesRe.ReplaceAllString(s, "\n\n"))
}
