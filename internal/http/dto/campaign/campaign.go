// Package campaign contiene DTOs de drafts, envío y detalle de campañas.
package campaign

import (
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// DraftRequest: en PATCH sólo se mergean los campos presentes (nil => sin cambios).
type DraftRequest struct {
	Subject         *string                       `json:"subject"`
	Body            *string                       `json:"body"`
	FromName        *string                       `json:"from_name"`
	FromEmail       *string                       `json:"from_email"`
	ReplyTo         *string                       `json:"reply_to"`
	CC              *[]string                     `json:"cc"`
	BCC             *[]string                     `json:"bcc"`
	Recipients      *repository.RecipientSelector `json:"recipients"`
	SMTPConfigID    *string                       `json:"smtp_config_id"`
	SendType        *string                       `json:"send_type"`
	ScheduledAt     *string                       `json:"scheduled_at"`
	Timezone        *string                       `json:"timezone"`
	RecurringRule   *string                       `json:"recurring_rule"`
	Tags            *[]string                     `json:"tags"`
	FooterLocations *[]string                     `json:"footer_locations"`
	SocialMedia     *map[string]string            `json:"social_media"`
	CompanyInfo     *repository.CompanyInfo       `json:"company_info"`
}

// Attachment es un archivo ya leído del form de envío.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendRequest es el form multipart de POST /emails/{websiteID}/send ya decodificado.
type SendRequest struct {
	CampaignID      string
	Subject         string
	Body            string
	FromName        string
	FromEmail       string
	ReplyTo         string
	CC              []string
	BCC             []string
	Recipients      repository.RecipientSelector
	SMTPConfigID    string
	SendType        string
	ScheduledAt     string
	Timezone        string
	RecurringRule   string
	Tags            []string
	FooterLocations []string
	SocialMedia     map[string]string
	CompanyInfo     repository.CompanyInfo
	Attachments     []Attachment
}

// SendResponse: 202 para immediate, 201 para scheduled.
type SendResponse struct {
	CampaignID  string     `json:"campaign_id"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type AttachmentInfo struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
}

type Campaign struct {
	CampaignID      string                       `json:"campaign_id"`
	Subject         string                       `json:"subject"`
	Body            string                       `json:"body"`
	FromName        string                       `json:"from_name"`
	FromEmail       string                       `json:"from_email"`
	ReplyTo         string                       `json:"reply_to"`
	CC              []string                     `json:"cc"`
	BCC             []string                     `json:"bcc"`
	Recipients      repository.RecipientSelector `json:"recipients"`
	SMTPConfigID    *string                      `json:"smtp_config_id"`
	SendType        string                       `json:"send_type"`
	ScheduledAt     *time.Time                   `json:"scheduled_at"`
	Timezone        string                       `json:"timezone"`
	RecurringRule   string                       `json:"recurring_rule"`
	Tags            []string                     `json:"tags"`
	FooterLocations []string                     `json:"footer_locations"`
	SocialMedia     map[string]string            `json:"social_media"`
	CompanyInfo     repository.CompanyInfo       `json:"company_info"`
	Status          string                       `json:"status"`
	LastSentAt      *time.Time                   `json:"last_sent_at"`
	Attachments     []AttachmentInfo             `json:"attachments,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

type Recipient struct {
	RecipientID     string     `json:"recipient_id"`
	ContactID       string     `json:"contact_id"`
	Email           string     `json:"email"`
	RecipientStatus string     `json:"recipient_status"`
	SentAt          *time.Time `json:"sent_at"`
	Error           string     `json:"error,omitempty"`
}

// Detail es GET /emails/{websiteID}/{campaignID}.
type Detail struct {
	Campaign
	RecipientList []Recipient    `json:"recipient_list"`
	Counts        map[string]int `json:"counts"`
}

type ListResponse struct {
	Items []Campaign `json:"items"`
}
