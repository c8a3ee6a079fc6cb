package smtp

import "time"

// CreateRequest es el body de POST /smtp/{websiteID} y de /test.
type CreateRequest struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Secure    bool   `json:"secure"`
	IsDefault bool   `json:"is_default"`
	TestEmail string `json:"test_email"`
}

// Config nunca incluye la password.
type Config struct {
	ConfigID  string    `json:"config_id"`
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	User      string    `json:"user"`
	Secure    bool      `json:"secure"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Items []Config `json:"items"`
}
