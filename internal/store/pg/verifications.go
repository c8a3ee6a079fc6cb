package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

type verificationRepo struct {
	pool *pgxpool.Pool
}

func (r *verificationRepo) Replace(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return mapErr(inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM email_verifications WHERE user_id = $1`, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO email_verifications (token_hash, user_id, expires_at)
			VALUES ($1, $2, $3)`,
			tokenHash, userID, expiresAt)
		return err
	}))
}

func (r *verificationRepo) Lookup(ctx context.Context, tokenHash string) (*repository.PendingVerification, error) {
	var p repository.PendingVerification
	err := r.pool.QueryRow(ctx, `
		SELECT v.token_hash, u.user_id, u.email, u.is_verified, v.expires_at, v.created_at
		FROM email_verifications v
		JOIN users u ON u.user_id = v.user_id
		WHERE v.token_hash = $1`, tokenHash,
	).Scan(&p.TokenHash, &p.UserID, &p.Email, &p.IsVerified, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// Consume: el UPDATE condicionado garantiza una sola transición aun con clicks concurrentes.
// El token queda hasta que DeleteExpired lo purga, así un re-click resuelve "ya verificado".
func (r *verificationRepo) Consume(ctx context.Context, userID, _ string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_verified = TRUE WHERE user_id = $1 AND is_verified = FALSE`, userID)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *verificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE expires_at < $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(tag.RowsAffected()), nil
}
