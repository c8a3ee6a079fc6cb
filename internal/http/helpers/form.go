package helpers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/http/errors"
)

// ParseMultipart parsea un form multipart con tope de tamaño. Devuelve false si ya escribió el error.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		errors.WriteError(w, errors.ErrInvalidFormat.WithDetail("Content-Type must be multipart/form-data"))
		return false
	}
	// margen para los campos de texto del form
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			errors.WriteError(w, errors.ErrBodyTooLarge)
			return false
		}
		errors.WriteError(w, errors.ErrInvalidFormat.WithCause(err))
		return false
	}
	return true
}

// FormJSON decodifica un campo del form que viene como JSON string. Vacío => no toca v.
func FormJSON(r *http.Request, field string, v any) error {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%s: invalid JSON", field)
	}
	return nil
}

// FormList acepta un array JSON o una lista separada por comas.
func FormList(r *http.Request, field string) ([]string, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON array", field)
		}
		return out, nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// FormBool: "true"/"1"/"on" => true; vacío => def.
func FormBool(r *http.Request, field string, def bool) bool {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return raw == "on"
	}
	return b
}

// UploadedFile es un archivo del form ya leído.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadFiles lee todos los archivos de un campo.
func ReadFiles(r *http.Request, field string) ([]UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	out := make([]UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		out = append(out, UploadedFile{Filename: fh.Filename, ContentType: ct, Data: data})
	}
	return out, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// QueryInt lee un entero del query string con default y tope.
func QueryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// QueryBool retorna nil si el parámetro no vino.
func QueryBool(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}
