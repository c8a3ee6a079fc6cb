package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type labelRepo struct {
	pool *pgxpool.Pool
}

const labelCols = `label_id, website_id, name, color, created_at`

func scanLabel(row interface{ Scan(...any) error }) (*repository.Label, error) {
	var l repository.Label
	if err := row.Scan(&l.ID, &l.WebsiteID, &l.Name, &l.Color, &l.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (r *labelRepo) List(ctx context.Context, websiteID string) ([]repository.Label, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+labelCols+` FROM labels WHERE website_id = $1 ORDER BY lower(name)`, websiteID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, mapErr(rows.Err())
}

func (r *labelRepo) Get(ctx context.Context, websiteID, labelID string) (*repository.Label, error) {
	return scanLabel(r.pool.QueryRow(ctx,
		`SELECT `+labelCols+` FROM labels WHERE website_id = $1 AND label_id = $2`, websiteID, labelID))
}

func (r *labelRepo) Create(ctx context.Context, websiteID string, in repository.LabelInput) (*repository.Label, error) {
	return scanLabel(r.pool.QueryRow(ctx, `
		INSERT INTO labels (label_id, website_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING `+labelCols,
		uuid.NewString(), websiteID, in.Name, in.Color))
}

func (r *labelRepo) Update(ctx context.Context, websiteID, labelID string, in repository.LabelInput) (*repository.Label, error) {
	return scanLabel(r.pool.QueryRow(ctx, `
		UPDATE labels SET name = $3, color = $4
		WHERE website_id = $1 AND label_id = $2
		RETURNING `+labelCols,
		websiteID, labelID, in.Name, in.Color))
}

// Delete: contacts.label_id queda NULL por la FK (ON DELETE SET NULL).
func (r *labelRepo) Delete(ctx context.Context, websiteID, labelID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM labels WHERE website_id = $1 AND label_id = $2`, websiteID, labelID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
