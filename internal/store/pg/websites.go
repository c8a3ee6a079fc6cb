package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type websiteRepo struct {
	pool *pgxpool.Pool
}

const websiteCols = `website_id, user_id, company_name, domain, field, created_at, updated_at`

func scanWebsite(row interface{ Scan(...any) error }) (*repository.Website, error) {
	var w repository.Website
	if err := row.Scan(&w.ID, &w.UserID, &w.CompanyName, &w.Domain, &w.Field, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

func (r *websiteRepo) Create(ctx context.Context, in repository.CreateWebsiteInput) (*repository.Website, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO websites (website_id, user_id, company_name, domain, field)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+websiteCols,
		uuid.NewString(), in.UserID, in.CompanyName, in.Domain, in.Field)
	return scanWebsite(row)
}

func (r *websiteRepo) ListByUser(ctx context.Context, userID string) ([]repository.Website, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+websiteCols+` FROM websites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Website{}
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, mapErr(rows.Err())
}

func (r *websiteRepo) Get(ctx context.Context, websiteID string) (*repository.Website, error) {
	return scanWebsite(r.pool.QueryRow(ctx,
		`SELECT `+websiteCols+` FROM websites WHERE website_id = $1`, websiteID))
}

func (r *websiteRepo) GetForUser(ctx context.Context, websiteID, userID string) (*repository.Website, error) {
	return scanWebsite(r.pool.QueryRow(ctx,
		`SELECT `+websiteCols+` FROM websites WHERE website_id = $1 AND user_id = $2`, websiteID, userID))
}

func (r *websiteRepo) Update(ctx context.Context, websiteID, userID string, in repository.UpdateWebsiteInput) (*repository.Website, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE websites SET
			company_name = COALESCE($3, company_name),
			domain       = COALESCE($4, domain),
			field        = COALESCE($5, field),
			updated_at   = NOW()
		WHERE website_id = $1 AND user_id = $2
		RETURNING `+websiteCols,
		websiteID, userID, in.CompanyName, in.Domain, in.Field)
	return scanWebsite(row)
}

func (r *websiteRepo) Delete(ctx context.Context, websiteID, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM websites WHERE website_id = $1 AND user_id = $2`, websiteID, userID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
