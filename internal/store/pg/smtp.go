package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type smtpRepo struct {
	pool *pgxpool.Pool
}

const smtpCols = `config_id, website_id, name, host, port, username, password_enc, secure, is_default, created_at`

func scanSMTP(row interface{ Scan(...any) error }) (*repository.SMTPConfig, error) {
	var c repository.SMTPConfig
	if err := row.Scan(&c.ID, &c.WebsiteID, &c.Name, &c.Host, &c.Port, &c.Username, &c.PasswordEnc,
		&c.Secure, &c.IsDefault, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *smtpRepo) List(ctx context.Context, websiteID string) ([]repository.SMTPConfig, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+smtpCols+` FROM smtp_configs WHERE website_id = $1 ORDER BY is_default DESC, created_at`, websiteID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.SMTPConfig{}
	for rows.Next() {
		c, err := scanSMTP(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, mapErr(rows.Err())
}

func (r *smtpRepo) Get(ctx context.Context, websiteID, configID string) (*repository.SMTPConfig, error) {
	return scanSMTP(r.pool.QueryRow(ctx,
		`SELECT `+smtpCols+` FROM smtp_configs WHERE website_id = $1 AND config_id = $2`, websiteID, configID))
}

func (r *smtpRepo) GetDefault(ctx context.Context, websiteID string) (*repository.SMTPConfig, error) {
	return scanSMTP(r.pool.QueryRow(ctx,
		`SELECT `+smtpCols+` FROM smtp_configs WHERE website_id = $1 AND is_default`, websiteID))
}

// lockWebsite serializa cambios de default dentro del mismo website.
func lockWebsite(ctx context.Context, tx pgx.Tx, websiteID string) error {
	var id string
	return tx.QueryRow(ctx, `SELECT website_id FROM websites WHERE website_id = $1 FOR UPDATE`, websiteID).Scan(&id)
}

func (r *smtpRepo) Create(ctx context.Context, websiteID string, in repository.CreateSMTPConfigInput) (*repository.SMTPConfig, error) {
	var out *repository.SMTPConfig
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockWebsite(ctx, tx, websiteID); err != nil {
			return err
		}
		var existing int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM smtp_configs WHERE website_id = $1`, websiteID).Scan(&existing); err != nil {
			return err
		}
		isDefault := in.IsDefault || existing == 0
		if isDefault {
			if _, err := tx.Exec(ctx, `UPDATE smtp_configs SET is_default = FALSE WHERE website_id = $1 AND is_default`, websiteID); err != nil {
				return err
			}
		}
		c, err := scanSMTP(tx.QueryRow(ctx, `
			INSERT INTO smtp_configs (config_id, website_id, name, host, port, username, password_enc, secure, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+smtpCols,
			uuid.NewString(), websiteID, in.Name, in.Host, in.Port, in.Username, in.PasswordEnc, in.Secure, isDefault))
		out = c
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// SetDefault: dos statements porque el índice parcial se chequea por fila.
func (r *smtpRepo) SetDefault(ctx context.Context, websiteID, configID string) error {
	return mapErr(inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockWebsite(ctx, tx, websiteID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE smtp_configs SET is_default = FALSE WHERE website_id = $1 AND is_default`, websiteID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE smtp_configs SET is_default = TRUE WHERE website_id = $1 AND config_id = $2`, websiteID, configID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	}))
}

func (r *smtpRepo) Delete(ctx context.Context, websiteID, configID string) error {
	return mapErr(inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockWebsite(ctx, tx, websiteID); err != nil {
			return err
		}
		var wasDefault bool
		err := tx.QueryRow(ctx,
			`DELETE FROM smtp_configs WHERE website_id = $1 AND config_id = $2 RETURNING is_default`,
			websiteID, configID).Scan(&wasDefault)
		if err != nil {
			return err
		}
		if !wasDefault {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE smtp_configs SET is_default = TRUE
			WHERE config_id = (
				SELECT config_id FROM smtp_configs WHERE website_id = $1 ORDER BY created_at LIMIT 1
			)`, websiteID)
		return err
	}))
}
