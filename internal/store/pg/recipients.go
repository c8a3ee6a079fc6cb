package pg

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type recipientRepo struct {
	pool *pgxpool.Pool
}

const recipientCols = `recipient_id, campaign_id, contact_id, email, recipient_status, error, sent_at`

func scanRecipient(row interface{ Scan(...any) error }) (*repository.Recipient, error) {
	var rc repository.Recipient
	var status string
	if err := row.Scan(&rc.ID, &rc.CampaignID, &rc.ContactID, &rc.Email, &status, &rc.Error, &rc.SentAt); err != nil {
		return nil, mapErr(err)
	}
	rc.Status = repository.RecipientStatus(status)
	return &rc, nil
}

func (r *recipientRepo) Prepare(ctx context.Context, campaignID string, contacts []repository.Contact, resetSent bool) ([]repository.Recipient, error) {
	out := make([]repository.Recipient, 0, len(contacts))
	if len(contacts) == 0 {
		return out, nil
	}

	// El WHERE del DO UPDATE hace que una fila ya enviada no vuelva (sin RETURNING) salvo resetSent.
	const q = `
		INSERT INTO recipients (recipient_id, campaign_id, contact_id, email, recipient_status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT (campaign_id, contact_id) DO UPDATE
			SET email = EXCLUDED.email, recipient_status = 'pending', error = '', sent_at = NULL
			WHERE recipients.recipient_status <> 'sent' OR $5
		RETURNING ` + recipientCols

	for start := 0; start < len(contacts); start += importChunk {
		end := start + importChunk
		if end > len(contacts) {
			end = len(contacts)
		}
		batch := &pgx.Batch{}
		for _, c := range contacts[start:end] {
			batch.Queue(q, uuid.NewString(), campaignID, c.ID, c.Email, resetSent)
		}
		br := r.pool.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			rc, err := scanRecipient(br.QueryRow())
			if errors.Is(err, repository.ErrNotFound) {
				continue // ya enviado
			}
			if err != nil {
				_ = br.Close()
				return nil, err
			}
			out = append(out, *rc)
		}
		if err := br.Close(); err != nil {
			return nil, mapErr(err)
		}
	}
	return out, nil
}

func (r *recipientRepo) MarkSent(ctx context.Context, recipientID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE recipients SET recipient_status = 'sent', error = '', sent_at = $2 WHERE recipient_id = $1`,
		recipientID, at)
	return mapErr(err)
}

func (r *recipientRepo) MarkFailed(ctx context.Context, recipientID, reason string) error {
	reason = truncateUTF8(reason, maxReasonBytes)
	_, err := r.pool.Exec(ctx,
		`UPDATE recipients SET recipient_status = 'failed', error = $2 WHERE recipient_id = $1`,
		recipientID, reason)
	return mapErr(err)
}

const maxReasonBytes = 1000

// truncateUTF8 corta s a lo sumo en n bytes sin partir una runa.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (r *recipientRepo) List(ctx context.Context, campaignID string) ([]repository.Recipient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recipientCols+` FROM recipients WHERE campaign_id = $1 ORDER BY email`, campaignID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Recipient{}
	for rows.Next() {
		rc, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rc)
	}
	return out, mapErr(rows.Err())
}

func (r *recipientRepo) Counts(ctx context.Context, campaignID string) (map[repository.RecipientStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT recipient_status, COUNT(*) FROM recipients WHERE campaign_id = $1 GROUP BY recipient_status`, campaignID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := map[repository.RecipientStatus]int{
		repository.RecipientPending: 0,
		repository.RecipientSent:    0,
		repository.RecipientFailed:  0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapErr(err)
		}
		out[repository.RecipientStatus(status)] = n
	}
	return out, mapErr(rows.Err())
}
