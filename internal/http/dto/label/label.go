package label

import "time"

// Request sirve para create y update (PATCH reemplaza nombre y color).
type Request struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Label struct {
	LabelID   string    `json:"label_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Items []Label `json:"items"`
}
