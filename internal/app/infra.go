package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
	"github.com/dropDatabas3/hellomail/internal/queue/amqp"
	"github.com/dropDatabas3/hellomail/internal/rate"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
	"github.com/dropDatabas3/hellomail/internal/store/pg"
	migrations "github.com/dropDatabas3/hellomail/migrations/postgres"
)

// Repos son los repositorios de dominio, vengan de Postgres o de memoria.
type Repos struct {
	Users         repository.UserRepository
	Verifications repository.EmailVerificationRepository
	Websites      repository.WebsiteRepository
	Labels        repository.LabelRepository
	Contacts      repository.ContactRepository
	SMTPConfigs   repository.SMTPConfigRepository
	Campaigns     repository.CampaignRepository
	Recipients    repository.RecipientRepository

	// Pool es nil con storage.driver=memory.
	Pool  *pgxpool.Pool
	ping  func(ctx context.Context) error
	close func()
}

// OpenStore abre el backend de storage.driver. Con flags.migrate aplica las migraciones pendientes.
func OpenStore(ctx context.Context, cfg *config.Config) (*Repos, error) {
	log := logger.L().With(logger.Component("app"), logger.String("driver", cfg.Storage.Driver))

	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage, nothing will be persisted")
		s := memory.New()
		return &Repos{
			Users:         s.Users,
			Verifications: s.Verifications,
			Websites:      s.Websites,
			Labels:        s.Labels,
			Contacts:      s.Contacts,
			SMTPConfigs:   s.SMTPConfigs,
			Campaigns:     s.Campaigns,
			Recipients:    s.Recipients,
			ping:          func(context.Context) error { return nil },
			close:         func() {},
		}, nil
	}

	s, err := pg.New(ctx, cfg.Storage.DSN, pg.Options{
		MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
		MinConns:        cfg.Storage.Postgres.MinConns,
		ConnMaxLifetime: config.Dur(cfg.Storage.Postgres.ConnMaxLifetime, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.Flags.Migrate {
		n, err := pg.MigrateUp(ctx, s.Pool(), migrations.FS, 0)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", logger.Count(n))
	}
	return &Repos{
		Users:         s.Users,
		Verifications: s.Verifications,
		Websites:      s.Websites,
		Labels:        s.Labels,
		Contacts:      s.Contacts,
		SMTPConfigs:   s.SMTPConfigs,
		Campaigns:     s.Campaigns,
		Recipients:    s.Recipients,
		Pool:          s.Pool(),
		ping:          s.Ping,
		close:         s.Close,
	}, nil
}

func (r *Repos) Ping(ctx context.Context) error { return r.ping(ctx) }

func (r *Repos) Close() {
	if r != nil && r.close != nil {
		r.close()
	}
}

// openCache arma el cache de cache.kind. Con redis devuelve también el cliente,
// que comparten los rate limiters.
func openCache(ctx context.Context, cfg *config.Config) (cache.Client, *rdb.Client, error) {
	ttl := config.Dur(cfg.Cache.Memory.DefaultTTL, 2*time.Minute)
	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("cache: redis ping failed: %w", err)
		}
		return cache.NewRedis(client, cfg.Cache.Redis.Prefix, ttl), client, nil
	case "memory", "":
		return cache.NewMemory(cfg.Cache.Redis.Prefix, ttl), nil, nil
	default:
		return nil, nil, fmt.Errorf("cache: driver desconocido %q", cfg.Cache.Kind)
	}
}

// OpenQueue abre la cola de queue.kind. onDrop recibe los jobs descartados.
func OpenQueue(cfg *config.Config, onDrop queue.DropFunc) (queue.Queue, error) {
	switch cfg.Queue.Kind {
	case "amqp":
		q, err := amqp.Dial(amqp.Config{
			URL:        cfg.Queue.AMQP.URL,
			Exchange:   cfg.Queue.AMQP.Exchange,
			Queue:      cfg.Queue.AMQP.Queue,
			RoutingKey: cfg.Queue.AMQP.RoutingKey,
			Prefetch:   cfg.Queue.AMQP.Prefetch,
			OnDrop:     onDrop,
		})
		if err != nil {
			return nil, err
		}
		return q, nil
	case "memory", "":
		q := queue.NewMemory(cfg.Queue.Memory.Buffer)
		q.OnDrop = onDrop
		return q, nil
	default:
		return nil, fmt.Errorf("queue: kind desconocido %q", cfg.Queue.Kind)
	}
}

type limiters struct {
	global   rate.Limiter
	login    rate.Limiter
	smtpTest rate.Limiter
}

// newLimiters: con redis los contadores se comparten entre réplicas, si no van en memoria.
// login y smtp_test siempre están activos; el global depende de rate.enabled.
func newLimiters(cfg *config.Config, client *rdb.Client) limiters {
	mk := func(prefix string, max int, window time.Duration) rate.Limiter {
		if client != nil {
			return rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+prefix, max, window)
		}
		return rate.NewMemoryLimiter(max, window)
	}

	var l limiters
	l.login = mk("rl:login:", cfg.Rate.Login.Limit, config.Dur(cfg.Rate.Login.Window, time.Minute))
	l.smtpTest = mk("rl:smtp:", cfg.Rate.SMTPTest.Limit, config.Dur(cfg.Rate.SMTPTest.Window, time.Minute))
	if cfg.Rate.Enabled {
		l.global = mk("rl:global:", cfg.Rate.MaxRequests, config.Dur(cfg.Rate.Window, time.Minute))
	}
	return l
}

// systemMailer manda los mails de verificación. Sin smtp.host quedan en el log.
func systemMailer(cfg *config.Config) email.Sender {
	if cfg.SMTP.Host == "" {
		return email.LogSender{}
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		From:               cfg.SMTP.From,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            config.Dur(cfg.SMTP.Timeout, 15*time.Second),
	})
}
