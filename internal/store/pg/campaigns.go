package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type campaignRepo struct {
	pool *pgxpool.Pool
}

const campaignCols = `campaign_id, website_id, subject, body, from_name, from_email, reply_to, cc, bcc,
	recipients, smtp_config_id, send_type, scheduled_at, timezone, recurring_rule, tags,
	footer_locations, social_media, company_info, status, last_sent_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*repository.Campaign, error) {
	var c repository.Campaign
	var sendType, recurring, status string
	var recipientsJSON, socialJSON, companyJSON []byte
	err := row.Scan(&c.ID, &c.WebsiteID, &c.Subject, &c.Body, &c.FromName, &c.FromEmail, &c.ReplyTo,
		&c.CC, &c.BCC, &recipientsJSON, &c.SMTPConfigID, &sendType, &c.ScheduledAt, &c.Timezone,
		&recurring, &c.Tags, &c.FooterLocations, &socialJSON, &companyJSON, &status, &c.LastSentAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	c.SendType = repository.SendType(sendType)
	c.RecurringRule = repository.RecurringRule(recurring)
	c.Status = repository.CampaignStatus(status)
	if err := unmarshalJSONB(recipientsJSON, &c.Recipients); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(socialJSON, &c.SocialMedia); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(companyJSON, &c.CompanyInfo); err != nil {
		return nil, err
	}
	return &c, nil
}

func unmarshalJSONB(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("campaign jsonb: %w", err)
	}
	return nil
}

// campaignValues serializa los campos mutables, en el orden de las columnas $3..$20.
func campaignValues(c repository.Campaign) ([]any, error) {
	recipients, err := json.Marshal(c.Recipients)
	if err != nil {
		return nil, err
	}
	social := c.SocialMedia
	if social == nil {
		social = map[string]string{}
	}
	socialJSON, err := json.Marshal(social)
	if err != nil {
		return nil, err
	}
	company, err := json.Marshal(c.CompanyInfo)
	if err != nil {
		return nil, err
	}
	return []any{
		c.Subject, c.Body, c.FromName, c.FromEmail, c.ReplyTo, nonNil(c.CC), nonNil(c.BCC),
		recipients, nullIfEmpty(c.SMTPConfigID), string(c.SendType), c.ScheduledAt, c.Timezone,
		string(c.RecurringRule), nonNil(c.Tags), nonNil(c.FooterLocations), socialJSON, company,
		string(c.Status),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func insertAttachments(ctx context.Context, tx pgx.Tx, campaignID string, atts []repository.Attachment) ([]repository.Attachment, error) {
	out := make([]repository.Attachment, 0, len(atts))
	for _, a := range atts {
		a.ID = uuid.NewString()
		a.CampaignID = campaignID
		a.Size = int64(len(a.Data))
		if _, err := tx.Exec(ctx, `
			INSERT INTO campaign_attachments (attachment_id, campaign_id, filename, content_type, size, data)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, campaignID, a.Filename, a.ContentType, a.Size, a.Data); err != nil {
			return nil, err
		}
		a.Data = nil
		out = append(out, a)
	}
	return out, nil
}

func (r *campaignRepo) Create(ctx context.Context, c repository.Campaign) (*repository.Campaign, error) {
	vals, err := campaignValues(c)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	err = inTx(ctx, r.pool, func(tx pgx.Tx) error {
		args := append([]any{id, c.WebsiteID}, vals...)
		if _, err := tx.Exec(ctx, `
			INSERT INTO campaigns (campaign_id, website_id, subject, body, from_name, from_email, reply_to,
				cc, bcc, recipients, smtp_config_id, send_type, scheduled_at, timezone, recurring_rule,
				tags, footer_locations, social_media, company_info, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			args...); err != nil {
			return err
		}
		_, err := insertAttachments(ctx, tx, id, c.Attachments)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, c.WebsiteID, id)
}

func (r *campaignRepo) UpdateDraft(ctx context.Context, c repository.Campaign) (*repository.Campaign, error) {
	vals, err := campaignValues(c)
	if err != nil {
		return nil, err
	}
	err = inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		if err := tx.QueryRow(ctx,
			`SELECT status FROM campaigns WHERE campaign_id = $1 AND website_id = $2 FOR UPDATE`,
			c.ID, c.WebsiteID).Scan(&status); err != nil {
			return err
		}
		if repository.CampaignStatus(status) != repository.CampaignDraft {
			return repository.ErrConflict
		}
		args := append([]any{c.ID, c.WebsiteID}, vals...)
		if _, err := tx.Exec(ctx, `
			UPDATE campaigns SET
				subject = $3, body = $4, from_name = $5, from_email = $6, reply_to = $7, cc = $8,
				bcc = $9, recipients = $10, smtp_config_id = $11, send_type = $12, scheduled_at = $13,
				timezone = $14, recurring_rule = $15, tags = $16, footer_locations = $17,
				social_media = $18, company_info = $19, status = $20, updated_at = NOW()
			WHERE campaign_id = $1 AND website_id = $2`, args...); err != nil {
			return err
		}
		_, err := insertAttachments(ctx, tx, c.ID, c.Attachments)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, c.WebsiteID, c.ID)
}

func (r *campaignRepo) attachments(ctx context.Context, campaignID string, withData bool) ([]repository.Attachment, error) {
	cols := `attachment_id, campaign_id, filename, content_type, size`
	if withData {
		cols += `, data`
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+cols+` FROM campaign_attachments WHERE campaign_id = $1 ORDER BY filename`, campaignID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Attachment{}
	for rows.Next() {
		var a repository.Attachment
		dest := []any{&a.ID, &a.CampaignID, &a.Filename, &a.ContentType, &a.Size}
		if withData {
			dest = append(dest, &a.Data)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (r *campaignRepo) Get(ctx context.Context, websiteID, campaignID string) (*repository.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignCols+` FROM campaigns WHERE website_id = $1 AND campaign_id = $2`, websiteID, campaignID))
	if err != nil {
		return nil, err
	}
	if c.Attachments, err = r.attachments(ctx, campaignID, false); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *campaignRepo) GetForDispatch(ctx context.Context, campaignID string) (*repository.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignCols+` FROM campaigns WHERE campaign_id = $1`, campaignID))
	if err != nil {
		return nil, err
	}
	if c.Attachments, err = r.attachments(ctx, campaignID, true); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *campaignRepo) List(ctx context.Context, websiteID string, status repository.CampaignStatus) ([]repository.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignCols+` FROM campaigns
		WHERE website_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, websiteID, string(status))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, mapErr(rows.Err())
}

func (r *campaignRepo) Delete(ctx context.Context, websiteID, campaignID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM campaigns WHERE website_id = $1 AND campaign_id = $2 AND status <> 'sending'`,
		websiteID, campaignID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE website_id = $1 AND campaign_id = $2)`,
		websiteID, campaignID).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if exists {
		return repository.ErrConflict
	}
	return repository.ErrNotFound
}

func (r *campaignRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE campaigns SET status = 'sending', updated_at = NOW()
		WHERE campaign_id IN (
			SELECT campaign_id FROM campaigns
			WHERE status = 'scheduled' AND scheduled_at <= $1
			ORDER BY scheduled_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING campaign_id`, now, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, mapErr(err)
}

func (r *campaignRepo) Touch(ctx context.Context, campaignID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET updated_at = NOW() WHERE campaign_id = $1 AND status = 'sending'`, campaignID)
	return mapErr(err)
}

func (r *campaignRepo) ClaimStale(ctx context.Context, before time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE campaigns SET updated_at = NOW()
		WHERE campaign_id IN (
			SELECT campaign_id FROM campaigns
			WHERE status = 'sending' AND updated_at < $1
			ORDER BY updated_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING campaign_id`, before, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, mapErr(err)
}

func (r *campaignRepo) Finish(ctx context.Context, campaignID string, out repository.DispatchOutcome) error {
	var sentAt *time.Time
	if !out.SentAt.IsZero() {
		sentAt = &out.SentAt
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET
			status = $2,
			last_sent_at = COALESCE($3, last_sent_at),
			scheduled_at = COALESCE($4, scheduled_at),
			updated_at = NOW()
		WHERE campaign_id = $1 AND status = 'sending'`,
		campaignID, string(out.Status), sentAt, out.NextRunAt)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}
