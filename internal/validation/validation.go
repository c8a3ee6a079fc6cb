package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

// Reglas de formato compartidas por services e importer.
//
// Email: lower case + trim, sin display name, dominio con al menos un punto.
// Color: #rgb o #rrggbb, se guarda en lower case.
// Domain: sin scheme, sin path, sin "/" final, lower case.

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)
)

// NormalizeEmail retorna el email normalizado y si es válido.
func NormalizeEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 254 || !emailRe.MatchString(s) {
		return s, false
	}
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return s, false
	}
	return s, true
}

// ValidEmail es NormalizeEmail sin el valor.
func ValidEmail(s string) bool {
	_, ok := NormalizeEmail(s)
	return ok
}

// NormalizeColor retorna el color en lower case y si es válido.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, colorRe.MatchString(s)
}

// NormalizeDomain: "https://Acme.io/" => "acme.io".
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, p)
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, ".")
}

// ValidGender: vacío o uno de male/female/other.
func ValidGender(s string) bool {
	switch s {
	case "", "male", "female", "other":
		return true
	}
	return false
}

// SplitList separa "a@x.io, b@y.io" y descarta vacíos.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
