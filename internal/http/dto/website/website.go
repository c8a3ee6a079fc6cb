package website

import "time"

type CreateRequest struct {
	CompanyName string `json:"company_name"`
	Domain      string `json:"domain"`
	Field       string `json:"field"`
}

// UpdateRequest: campos ausentes no cambian.
type UpdateRequest struct {
	CompanyName *string `json:"company_name"`
	Domain      *string `json:"domain"`
	Field       *string `json:"field"`
}

type Website struct {
	WebsiteID   string    `json:"website_id"`
	CompanyName string    `json:"company_name"`
	Domain      string    `json:"domain"`
	Field       string    `json:"field"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items []Website `json:"items"`
}
