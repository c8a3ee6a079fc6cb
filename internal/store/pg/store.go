// Package pg implementa los repositorios de dominio sobre PostgreSQL (pgx v5, SQL a mano).
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// Store agrupa el pool y expone un repositorio por agregado.
type Store struct {
	pool *pgxpool.Pool

	Users         *userRepo
	Verifications *verificationRepo
	Websites      *websiteRepo
	Labels        *labelRepo
	Contacts      *contactRepo
	SMTPConfigs   *smtpRepo
	Campaigns     *campaignRepo
	Recipients    *recipientRepo
}

// Options ajustes del pool.
type Options struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		pcfg.MinConns = int32(opts.MinConns)
	}
	if opts.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = opts.ConnMaxLifetime
		pcfg.MaxConnIdleTime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB no responde todavía, readyz lo va a reportar.
	log := logger.L().With(logger.Component("pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg_pool_startup_ping_failed", logger.Err(err))
	} else {
		log.Info("pg_pool_ready", zap.Int32("max_conns", pcfg.MaxConns))
	}
	return NewFromPool(pool), nil
}

// NewFromPool arma el Store sobre un pool existente.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:          pool,
		Users:         &userRepo{pool: pool},
		Verifications: &verificationRepo{pool: pool},
		Websites:      &websiteRepo{pool: pool},
		Labels:        &labelRepo{pool: pool},
		Contacts:      &contactRepo{pool: pool},
		SMTPConfigs:   &smtpRepo{pool: pool},
		Campaigns:     &campaignRepo{pool: pool},
		Recipients:    &recipientRepo{pool: pool},
	}
}

// Pool expone el pool interno (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidTextRepr     = "22P02" // uuid mal formado en un path param
)

// mapErr traduce errores de pgx a los sentinels de repository.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrConflict
		case pgForeignKeyViolation, pgCheckViolation:
			return repository.ErrInvalidInput
		case pgInvalidTextRepr:
			return repository.ErrNotFound
		}
	}
	return err
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// inTx ejecuta fn en una transacción; rollback si fn falla.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
