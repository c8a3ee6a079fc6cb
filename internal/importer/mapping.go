// Package importer valida el mapeo de columnas y parsea CSVs de contactos.
package importer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field es un campo de contacto mapeable.
type Field struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Fields es el set fijo, en el orden en que los muestra el formulario.
var Fields = []Field{
	{Name: "prefix", Label: "Prefix"},
	{Name: "first_name", Label: "First name", Required: true},
	{Name: "last_name", Label: "Last name"},
	{Name: "email", Label: "Email", Required: true},
	{Name: "phone", Label: "Phone"},
	{Name: "address", Label: "Address"},
	{Name: "country", Label: "Country"},
	{Name: "state", Label: "State"},
	{Name: "city", Label: "City"},
	{Name: "postal_code", Label: "Postal code"},
	{Name: "tag", Label: "Tag"},
	{Name: "gender", Label: "Gender"},
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// ErrInvalidMapping envuelve todos los problemas de mapeo.
var ErrInvalidMapping = errors.New("invalid mapping")

// MappingError lista los problemas encontrados (orden estable).
type MappingError struct {
	Problems []string
}

func (e *MappingError) Error() string {
	return "invalid mapping: " + strings.Join(e.Problems, "; ")
}

func (e *MappingError) Unwrap() error { return ErrInvalidMapping }

// Mapping es columna => campo. "" o "skip" ignoran la columna.
type Mapping map[string]string

func skipped(field string) bool {
	f := strings.TrimSpace(strings.ToLower(field))
	return f == "" || f == "skip"
}

// Validate revisa los campos destino: desconocidos, duplicados y requeridos sin mapear.
// No necesita el archivo.
func (m Mapping) Validate() error {
	var problems []string
	seen := map[string][]string{}

	for _, col := range m.sortedColumns() {
		field := strings.TrimSpace(strings.ToLower(m[col]))
		if skipped(field) {
			continue
		}
		if _, ok := fieldIndex[field]; !ok {
			problems = append(problems, fmt.Sprintf("column %q maps to unknown field %q", col, m[col]))
			continue
		}
		seen[field] = append(seen[field], col)
	}

	for _, f := range Fields {
		cols := seen[f.Name]
		if len(cols) > 1 {
			problems = append(problems, fmt.Sprintf("field %q is mapped by more than one column (%s)", f.Name, strings.Join(cols, ", ")))
		}
		if f.Required && len(cols) == 0 {
			problems = append(problems, fmt.Sprintf("required field %q is not mapped", f.Name))
		}
	}

	if len(problems) > 0 {
		return &MappingError{Problems: problems}
	}
	return nil
}

// Resolve traduce el mapeo a índices de columna del archivo (0-based).
// Las claves pueden ser column_N (1-based) o, con header, el texto del header.
func (m Mapping) Resolve(header []string, width int, hasHeader bool) (map[int]string, error) {
	byName := map[string]int{}
	if hasHeader {
		for i, h := range header {
			k := strings.ToLower(strings.TrimSpace(h))
			if _, dup := byName[k]; !dup {
				byName[k] = i
			}
		}
	}

	out := make(map[int]string, len(m))
	owner := map[int]string{}
	var problems []string
	for _, col := range m.sortedColumns() {
		if skipped(m[col]) {
			continue
		}
		idx, ok := columnIndex(col, width)
		if !ok && hasHeader {
			idx, ok = byName[strings.ToLower(strings.TrimSpace(col))]
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("column %q does not exist in the file", col))
			continue
		}
		if prev, dup := owner[idx]; dup {
			problems = append(problems, fmt.Sprintf("columns %q and %q refer to the same file column %d", prev, col, idx+1))
			continue
		}
		owner[idx] = col
		out[idx] = strings.TrimSpace(strings.ToLower(m[col]))
	}
	if len(problems) > 0 {
		return nil, &MappingError{Problems: problems}
	}
	return out, nil
}

// columnIndex: "column_3" => 2 si el archivo tiene al menos 3 columnas.
func columnIndex(col string, width int) (int, bool) {
	rest, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(col)), "column_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > width {
		return 0, false
	}
	return n - 1, true
}

func (m Mapping) sortedColumns() []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
