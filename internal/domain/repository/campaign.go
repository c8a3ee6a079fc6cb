package repository

import (
	"context"
	"time"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignFailed    CampaignStatus = "failed"
)

type SendType string

const (
	SendImmediate SendType = "immediate"
	SendScheduled SendType = "scheduled"
)

type RecurringRule string

const (
	RecurNone    RecurringRule = "none"
	RecurDaily   RecurringRule = "daily"
	RecurWeekly  RecurringRule = "weekly"
	RecurMonthly RecurringRule = "monthly"
)

// Recurring indica si la regla reprograma la campaña después de cada envío.
func (r RecurringRule) Recurring() bool {
	return r == RecurDaily || r == RecurWeekly || r == RecurMonthly
}

// CompanyInfo se renderiza en el bloque de branding del footer.
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// Attachment: Data sólo se carga para el dispatcher.
type Attachment struct {
	ID          string
	CampaignID  string
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type Campaign struct {
	ID              string
	WebsiteID       string
	Subject         string
	Body            string
	FromName        string
	FromEmail       string
	ReplyTo         string
	CC              []string
	BCC             []string
	Recipients      RecipientSelector
	SMTPConfigID    *string
	SendType        SendType
	ScheduledAt     *time.Time
	Timezone        string
	RecurringRule   RecurringRule
	Tags            []string
	FooterLocations []string
	SocialMedia     map[string]string
	CompanyInfo     CompanyInfo
	Status          CampaignStatus
	LastSentAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Attachments []Attachment
}

// DispatchOutcome es el cierre de un envío.
type DispatchOutcome struct {
	Status    CampaignStatus
	SentAt    time.Time
	NextRunAt *time.Time // recurrentes: vuelve a scheduled
}

type CampaignRepository interface {
	// Create inserta la campaña y sus adjuntos en una transacción.
	Create(ctx context.Context, c Campaign) (*Campaign, error)
	// UpdateDraft pisa los campos de una campaña en draft (puede promoverla a otro status).
	// ErrNotFound si no existe en el website, ErrConflict si ya no es draft.
	// Los adjuntos de c se agregan a los existentes.
	UpdateDraft(ctx context.Context, c Campaign) (*Campaign, error)
	// Get trae metadata de adjuntos (sin Data).
	Get(ctx context.Context, websiteID, campaignID string) (*Campaign, error)
	// GetForDispatch trae adjuntos con Data, sin scope de website.
	GetForDispatch(ctx context.Context, campaignID string) (*Campaign, error)
	List(ctx context.Context, websiteID string, status CampaignStatus) ([]Campaign, error)
	// Delete: ErrConflict si está sending.
	Delete(ctx context.Context, websiteID, campaignID string) error

	// ClaimDue pasa a sending hasta limit campañas scheduled vencidas (SKIP LOCKED).
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error)
	// Finish cierra un envío que está en sending.
	Finish(ctx context.Context, campaignID string, out DispatchOutcome) error

	// Touch renueva updated_at de una campaña en sending (heartbeat del dispatcher).
	Touch(ctx context.Context, campaignID string) error
	// ClaimStale reclama hasta limit campañas en sending sin heartbeat desde before
	// (SKIP LOCKED) y les renueva updated_at para que otra réplica no las tome.
	ClaimStale(ctx context.Context, before time.Time, limit int) ([]string, error)
}
