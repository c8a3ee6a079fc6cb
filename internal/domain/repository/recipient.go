package repository

import (
	"context"
	"time"
)

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

// Recipient es el resultado de envío por contacto.
type Recipient struct {
	ID         string
	CampaignID string
	ContactID  string
	Email      string
	Status     RecipientStatus
	Error      string
	SentAt     *time.Time
}

type RecipientRepository interface {
	// Prepare crea una fila pending por contacto y retorna las que hay que enviar.
	// Filas ya enviadas sólo se resetean con resetSent (corridas de campañas recurrentes);
	// sin resetSent, un re-despacho no repite envíos exitosos.
	Prepare(ctx context.Context, campaignID string, contacts []Contact, resetSent bool) ([]Recipient, error)
	MarkSent(ctx context.Context, recipientID string, at time.Time) error
	MarkFailed(ctx context.Context, recipientID, reason string) error
	List(ctx context.Context, campaignID string) ([]Recipient, error)
	Counts(ctx context.Context, campaignID string) (map[RecipientStatus]int, error)
}
