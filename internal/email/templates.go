package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Templates son las plantillas de mails del sistema.
type Templates struct {
	VerifyHTML *template.Template
	VerifyTXT  *texttpl.Template
}

// VerifyVars son las variables del mail de verificación.
type VerifyVars struct {
	UserEmail string
	Name      string
	Link      string
	TTL       string
}

// LoadTemplates parsea las plantillas embebidas.
func LoadTemplates() (*Templates, error) {
	vh, err := template.ParseFS(templateFS, "templates/verify_email.html")
	if err != nil {
		return nil, fmt.Errorf("parse verify html: %w", err)
	}
	vt, err := texttpl.ParseFS(templateFS, "templates/verify_email.txt")
	if err != nil {
		return nil, fmt.Errorf("parse verify txt: %w", err)
	}
	return &Templates{VerifyHTML: vh, VerifyTXT: vt}, nil
}

// RenderVerify retorna (html, text).
func (t *Templates) RenderVerify(v VerifyVars) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := t.VerifyHTML.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := t.VerifyTXT.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
