package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// MigrateUp aplica en orden los *_up.sql pendientes. steps 0 => todos.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, steps int) (int, error) {
	if _, err := pool.Exec(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("schema_migrations: %w", err)
	}
	files, err := listSQL(fsys, "_up.sql")
	if err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range files {
		v := version(f, "_up.sql")
		if applied[v] {
			continue
		}
		if steps > 0 && n >= steps {
			break
		}
		if err := execFile(ctx, pool, fsys, f, func(ctx context.Context) error {
			_, err := pool.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v)
			return err
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// MigrateDown revierte las últimas steps migraciones aplicadas (0 => todas).
func MigrateDown(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, steps int) (int, error) {
	if _, err := pool.Exec(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("schema_migrations: %w", err)
	}
	files, err := listSQL(fsys, "_down.sql")
	if err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return 0, err
	}
	// más reciente primero
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	n := 0
	for _, f := range files {
		v := version(f, "_down.sql")
		if !applied[v] {
			continue
		}
		if steps > 0 && n >= steps {
			break
		}
		if err := execFile(ctx, pool, fsys, f, func(ctx context.Context) error {
			_, err := pool.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, v)
			return err
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func listSQL(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func version(name, suffix string) string {
	return strings.TrimSuffix(path.Base(name), suffix)
}

func execFile(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, name string, record func(context.Context) error) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}
	if err := record(ctx); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	logger.L().Info("migration applied",
		logger.Component("migrate"),
		logger.String("file", name),
		logger.Duration(time.Since(start).Truncate(time.Millisecond)),
	)
	return nil
}
