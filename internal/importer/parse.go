package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

// MaxErrors limita los mensajes por línea que se devuelven al cliente.
const MaxErrors = 100

// ErrInvalidCSV indica un archivo vacío o ilegible.
var ErrInvalidCSV = errors.New("invalid csv")

// Result es el resumen que ve el cliente.
type Result struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// AddError suma un skip y guarda el mensaje si no se llegó al tope.
func (r *Result) AddError(line int, msg string) {
	r.Skipped++
	if len(r.Errors) < MaxErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("line %d: %s", line, msg))
	}
}

// Row es una fila válida lista para insertar.
type Row struct {
	Line  int
	Input repository.ContactInput
}

// Parsed es la salida de Parse: filas válidas (deduplicadas dentro del archivo) + resumen parcial.
type Parsed struct {
	Rows   []Row
	Result Result
}

// Options del parseo.
type Options struct {
	HasHeader bool
	LabelID   *string
}

// Parse lee el CSV completo. Los errores por fila no cortan el parseo; sí lo cortan un archivo
// vacío, un CSV malformado o un mapeo que referencia columnas inexistentes.
func Parse(r io.Reader, m Mapping, opts Options) (*Parsed, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\ufeff")
	}

	cols, err := m.Resolve(first, len(first), opts.HasHeader)
	if err != nil {
		return nil, err
	}

	out := &Parsed{}
	seen := map[string]int{}

	handle := func(rec []string, line int) {
		out.Result.Total++
		if blank(rec) {
			out.Result.AddError(line, "empty row")
			return
		}
		in := rowInput(rec, cols)
		in.LabelID = opts.LabelID

		if in.Email == "" {
			out.Result.AddError(line, "email is required")
			return
		}
		email, ok := validation.NormalizeEmail(in.Email)
		if !ok {
			out.Result.AddError(line, fmt.Sprintf("invalid email %q", in.Email))
			return
		}
		in.Email = email
		if in.FirstName == "" {
			out.Result.AddError(line, "first_name is required")
			return
		}
		in.Gender = strings.ToLower(in.Gender)
		if !validation.ValidGender(in.Gender) {
			in.Gender = ""
		}
		if prev, dup := seen[email]; dup {
			out.Result.AddError(line, fmt.Sprintf("duplicate email %s (first seen on line %d)", email, prev))
			return
		}
		seen[email] = line
		out.Rows = append(out.Rows, Row{Line: line, Input: in})
	}

	// la línea física donde arranca el registro: un campo entre comillas puede ocupar varias
	if !opts.HasHeader {
		line, _ := cr.FieldPos(0)
		handle(first, line)
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := cr.FieldPos(0)
		handle(rec, line)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowInput(rec []string, cols map[int]string) repository.ContactInput {
	var in repository.ContactInput
	for idx, field := range cols {
		if idx >= len(rec) {
			continue
		}
		v := strings.TrimSpace(rec[idx])
		switch field {
		case "prefix":
			in.Prefix = v
		case "first_name":
			in.FirstName = v
		case "last_name":
			in.LastName = v
		case "email":
			in.Email = v
		case "phone":
			in.Phone = v
		case "address":
			in.Address = v
		case "country":
			in.Country = v
		case "state":
			in.State = v
		case "city":
			in.City = v
		case "postal_code":
			in.PostalCode = v
		case "tag":
			in.Tag = v
		case "gender":
			in.Gender = v
		}
	}
	return in
}
