// Package contact contiene DTOs de contactos, filtros e importación CSV.
package contact

import "time"

// Request es el body de create. En PATCH los campos ausentes conservan su valor.
type Request struct {
	Prefix     *string `json:"prefix"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Country    *string `json:"country"`
	State      *string `json:"state"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	LabelID    *string `json:"label_id"`
	Tag        *string `json:"tag"`
	Gender     *string `json:"gender"`
}

type Contact struct {
	ContactID    string    `json:"contact_id"`
	Prefix       string    `json:"prefix"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Country      string    `json:"country"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	LabelID      *string   `json:"label_id"`
	Tag          string    `json:"tag"`
	Gender       string    `json:"gender"`
	Unsubscribed bool      `json:"unsubscribed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items []Contact `json:"items"`
	Total int       `json:"total"`
}

type FiltersResponse struct {
	Countries []string `json:"countries"`
	Tags      []string `json:"tags"`
	Genders   []string `json:"genders"`
}

// ImportFieldsResponse alimenta el formulario de mapeo.
type ImportFieldsResponse struct {
	Fields []ImportField `json:"fields"`
}

type ImportField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// ImportResponse es el resumen de POST /contacts/{websiteID}/import.
type ImportResponse struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}
