package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type contactRepo struct {
	pool *pgxpool.Pool
}

const contactCols = `contact_id, website_id, prefix, first_name, last_name, email, phone, address,
	country, state, city, postal_code, label_id, tag, gender, unsubscribed, created_at, updated_at`

// importChunk limita el tamaño de cada batch de BulkInsert.
const importChunk = 500

func scanContact(row interface{ Scan(...any) error }) (*repository.Contact, error) {
	var c repository.Contact
	err := row.Scan(&c.ID, &c.WebsiteID, &c.Prefix, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.Country, &c.State, &c.City, &c.PostalCode, &c.LabelID, &c.Tag, &c.Gender,
		&c.Unsubscribed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func collectContacts(rows pgx.Rows) ([]repository.Contact, error) {
	defer rows.Close()
	out := []repository.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, mapErr(rows.Err())
}

// whereClause arma el WHERE de List; args[0] es siempre website_id.
func whereClause(websiteID string, f repository.ContactFilter) (string, []any) {
	conds := []string{"website_id = $1"}
	args := []any{websiteID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Gender != "" {
		add("gender = $%d", f.Gender)
	}
	if f.Country != "" {
		add("lower(country) = lower($%d)", f.Country)
	}
	if f.Tag != "" {
		add("lower(tag) = lower($%d)", f.Tag)
	}
	if f.LabelID != "" {
		add("label_id = $%d", f.LabelID)
	}
	if f.Unsubscribed != nil {
		add("unsubscribed = $%d", *f.Unsubscribed)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *contactRepo) List(ctx context.Context, websiteID string, f repository.ContactFilter) ([]repository.Contact, int, error) {
	where, args := whereClause(websiteID, f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	q := `SELECT ` + contactCols + ` FROM contacts WHERE ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, contact_id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	items, err := collectContacts(rows)
	return items, total, err
}

func (r *contactRepo) Get(ctx context.Context, websiteID, contactID string) (*repository.Contact, error) {
	return scanContact(r.pool.QueryRow(ctx,
		`SELECT `+contactCols+` FROM contacts WHERE website_id = $1 AND contact_id = $2`, websiteID, contactID))
}

const contactInsert = `
	INSERT INTO contacts (contact_id, website_id, prefix, first_name, last_name, email, phone, address,
		country, state, city, postal_code, label_id, tag, gender)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

func contactArgs(id, websiteID string, in repository.ContactInput) []any {
	return []any{id, websiteID, in.Prefix, in.FirstName, in.LastName, strings.TrimSpace(in.Email), in.Phone,
		in.Address, in.Country, in.State, in.City, in.PostalCode, nullIfEmpty(in.LabelID), in.Tag, in.Gender}
}

func (r *contactRepo) Create(ctx context.Context, websiteID string, in repository.ContactInput) (*repository.Contact, error) {
	row := r.pool.QueryRow(ctx, contactInsert+` RETURNING `+contactCols, contactArgs(uuid.NewString(), websiteID, in)...)
	return scanContact(row)
}

func (r *contactRepo) Update(ctx context.Context, websiteID, contactID string, in repository.ContactInput) (*repository.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE contacts SET
			prefix = $3, first_name = $4, last_name = $5, email = $6, phone = $7, address = $8,
			country = $9, state = $10, city = $11, postal_code = $12, label_id = $13, tag = $14,
			gender = $15, updated_at = NOW()
		WHERE contact_id = $1 AND website_id = $2
		RETURNING `+contactCols,
		contactArgs(contactID, websiteID, in)...)
	return scanContact(row)
}

func (r *contactRepo) Delete(ctx context.Context, websiteID, contactID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE website_id = $1 AND contact_id = $2`, websiteID, contactID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *contactRepo) FilterValues(ctx context.Context, websiteID string) (*repository.ContactFilterValues, error) {
	distinct := func(col string) ([]string, error) {
		rows, err := r.pool.Query(ctx,
			`SELECT DISTINCT `+col+` FROM contacts WHERE website_id = $1 AND `+col+` <> '' ORDER BY 1`, websiteID)
		if err != nil {
			return nil, mapErr(err)
		}
		vals, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if vals == nil {
			vals = []string{}
		}
		return vals, mapErr(err)
	}

	var (
		out repository.ContactFilterValues
		err error
	)
	if out.Countries, err = distinct("country"); err != nil {
		return nil, err
	}
	if out.Tags, err = distinct("tag"); err != nil {
		return nil, err
	}
	if out.Genders, err = distinct("gender"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contactRepo) ExistingEmails(ctx context.Context, websiteID string, emails []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(emails) == 0 {
		return out, nil
	}
	lower := make([]string, len(emails))
	for i, e := range emails {
		lower[i] = strings.ToLower(strings.TrimSpace(e))
	}
	rows, err := r.pool.Query(ctx,
		`SELECT lower(email) FROM contacts WHERE website_id = $1 AND lower(email) = ANY($2)`, websiteID, lower)
	if err != nil {
		return nil, mapErr(err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr(err)
	}
	for _, e := range found {
		out[e] = true
	}
	return out, nil
}

// BulkInsert manda INSERTs en batches dentro de una sola transacción; ON CONFLICT DO
// NOTHING descarta duplicados. Si un batch falla no queda nada insertado.
func (r *contactRepo) BulkInsert(ctx context.Context, websiteID string, inputs []repository.ContactInput) (int, error) {
	inserted := 0
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		for start := 0; start < len(inputs); start += importChunk {
			end := min(start+importChunk, len(inputs))

			batch := &pgx.Batch{}
			for _, in := range inputs[start:end] {
				batch.Queue(contactInsert+` ON CONFLICT DO NOTHING`, contactArgs(uuid.NewString(), websiteID, in)...)
			}
			br := tx.SendBatch(ctx, batch)
			for i := start; i < end; i++ {
				tag, err := br.Exec()
				if err != nil {
					_ = br.Close()
					return err
				}
				inserted += int(tag.RowsAffected())
			}
			if err := br.Close(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return inserted, nil
}

func (r *contactRepo) SetUnsubscribed(ctx context.Context, websiteID, contactID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET unsubscribed = TRUE, updated_at = NOW()
		WHERE website_id = $1 AND contact_id = $2`, websiteID, contactID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *contactRepo) Audience(ctx context.Context, websiteID string, sel repository.RecipientSelector) ([]repository.Contact, error) {
	if sel.Empty() {
		return []repository.Contact{}, nil
	}
	contactIDs := sel.ContactIDs
	if contactIDs == nil {
		contactIDs = []string{}
	}
	labelIDs := sel.LabelIDs
	if labelIDs == nil {
		labelIDs = []string{}
	}
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (lower(email)) `+contactCols+`
		FROM contacts
		WHERE website_id = $1
		  AND NOT unsubscribed
		  AND ($2 OR contact_id = ANY($3::uuid[]) OR label_id = ANY($4::uuid[]))
		ORDER BY lower(email), created_at`,
		websiteID, sel.All, contactIDs, labelIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectContacts(rows)
}
