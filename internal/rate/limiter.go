// Package rate limita requests por key (ip, usuario+scope).
package rate

import (
	"context"
	"strconv"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result de un Allow. RetryAfter sólo tiene sentido si !Allowed.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	// WindowTTL: lo que falta para que se resetee la ventana (X-RateLimit-Reset).
	WindowTTL time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter cuenta por ventana fija en Redis; todas las réplicas comparten el contador.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) bucketKey(key string, now time.Time) string {
	slot := now.Truncate(l.window).Unix()
	return l.prefix + strings.ReplaceAll(key, " ", "_") + ":" + strconv.FormatInt(slot, 10)
}

// Allow: SET NX con expiry + INCR en la misma transacción, así el contador nunca queda sin TTL.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.bucketKey(key, time.Now().UTC())

	var (
		hits *rdb.IntCmd
		ttl  *rdb.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		p.SetNX(ctx, k, 0, l.window)
		hits = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	n := hits.Val()
	res := Result{Allowed: n <= l.max, Remaining: max(l.max-n, 0), WindowTTL: ttl.Val()}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter <= 0 {
			res.RetryAfter = l.window
		}
	}
	return res, nil
}
