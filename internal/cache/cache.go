// Package cache provee un cache key/value con TTL para lookups calientes
// (ownership de websites, filtros de contactos).
//
// Drivers:
//   - memory: in-process sobre patrickmn/go-cache (dev, single node)
//   - redis: distribuido, para varias réplicas del API
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl 0 usa el default del driver.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key (idempotente).
	Delete(ctx context.Context, key string) error

	// Ping verifica la conexión (readyz).
	Ping(ctx context.Context) error

	Close() error
}

var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + k
}
