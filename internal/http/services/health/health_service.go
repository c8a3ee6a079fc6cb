// Package health resuelve el readiness de la API.
package health

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// Pinger es cualquier dependencia que se pueda chequear (pgx pool, cache, broker).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Result de GET /readyz.
type Result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   time.Time         `json:"time"`
}

func (r Result) Ready() bool { return r.Status == "ready" }

type Service interface {
	Ready(ctx context.Context) Result
}

type Deps struct {
	Checks  map[string]Pinger
	Timeout time.Duration
}

type Services struct {
	Health Service
}

func NewServices(d Deps) Services {
	return Services{Health: NewService(d)}
}

type service struct{ deps Deps }

func NewService(d Deps) Service {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &service{deps: d}
}

// Ready chequea cada dependencia con su propio timeout, en orden alfabético.
func (s *service) Ready(ctx context.Context) Result {
	res := Result{Status: "ready", Checks: map[string]string{}, Time: time.Now().UTC()}
	names := make([]string, 0, len(s.deps.Checks))
	for n := range s.deps.Checks {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := s.deps.Checks[name].Ping(cctx)
		cancel()
		if err != nil {
			res.Status = "unavailable"
			res.Checks[name] = "error: " + err.Error()
			logger.From(ctx).Warn("readiness check failed", logger.Component("health"), logger.String("check", name), logger.Err(err))
			continue
		}
		res.Checks[name] = "ok"
	}
	return res
}
