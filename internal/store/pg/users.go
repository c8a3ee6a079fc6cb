package pg

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userCols = `user_id, email, name, password_hash, is_verified, created_at`

func scanUser(row interface{ Scan(...any) error }) (*repository.User, error) {
	var u repository.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsVerified, &u.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userCols,
		uuid.NewString(), strings.ToLower(strings.TrimSpace(in.Email)), in.Name, in.PasswordHash,
	)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	return scanUser(row)
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}
