// Package app es el composition root: arma infraestructura, services, controllers y
// router a partir de la config, y corre el servidor HTTP, el consumer y el scheduler.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/campaign"
	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/delivery"
	"github.com/dropDatabas3/hellomail/internal/email"
	authctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/auth"
	campaignsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/campaigns"
	contactsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/contacts"
	healthctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/health"
	labelsctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/labels"
	smtpctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/smtp"
	websitesctrl "github.com/dropDatabas3/hellomail/internal/http/controllers/websites"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	"github.com/dropDatabas3/hellomail/internal/http/router"
	"github.com/dropDatabas3/hellomail/internal/http/services"
	authsvc "github.com/dropDatabas3/hellomail/internal/http/services/auth"
	campaignssvc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
	contactssvc "github.com/dropDatabas3/hellomail/internal/http/services/contacts"
	healthsvc "github.com/dropDatabas3/hellomail/internal/http/services/health"
	labelssvc "github.com/dropDatabas3/hellomail/internal/http/services/labels"
	smtpsvc "github.com/dropDatabas3/hellomail/internal/http/services/smtp"
	websitessvc "github.com/dropDatabas3/hellomail/internal/http/services/websites"
	"github.com/dropDatabas3/hellomail/internal/jwt"
	"github.com/dropDatabas3/hellomail/internal/metrics"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
	"github.com/dropDatabas3/hellomail/internal/security/secretbox"
)

// App es la aplicación cableada.
type App struct {
	Config  *config.Config
	Handler http.Handler

	Repos      *Repos
	Cache      cache.Client
	Queue      queue.Queue
	Dispatcher *delivery.Dispatcher
	Scheduler  *delivery.Scheduler

	closers []func()
}

// New arma todo. Lo que se abre se cierra en Close, también si New falla a mitad.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// ─── Infra ───
	if a.Repos, err = OpenStore(ctx, cfg); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Repos.Close)

	c, redisClient, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Cache = c
	a.closers = append(a.closers, func() { _ = c.Close() })

	box, err := secretbox.New(cfg.Security.SecretBoxMasterKey)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	templates, err := email.LoadTemplates()
	if err != nil {
		return nil, err
	}
	signer := jwt.NewSigner(cfg.Auth.SessionSecret, "hellomail", config.Dur(cfg.Auth.Session.TTL, 24*time.Hour))
	rl := newLimiters(cfg, redisClient)

	metricsHandler, err := metrics.Register(metrics.Config{Pool: a.Repos.Pool})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	// ─── Delivery ───
	lease := config.Dur(cfg.Scheduler.SendingLease, 15*time.Minute)
	a.Dispatcher = delivery.NewDispatcher(delivery.Deps{
		Campaigns:   a.Repos.Campaigns,
		Contacts:    a.Repos.Contacts,
		Recipients:  a.Repos.Recipients,
		SMTPConfigs: a.Repos.SMTPConfigs,
		Secrets:     box,
		Tokens:      signer,
		BaseURL:     cfg.App.BaseURL,
		Concurrency: cfg.Delivery.Concurrency,
		SendTimeout: config.Dur(cfg.Delivery.SendTimeout, 30*time.Second),
		Heartbeat:   lease / 3,
	})
	if a.Queue, err = OpenQueue(cfg, a.Dispatcher.Abandon); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = a.Queue.Close() })

	a.Scheduler = &delivery.Scheduler{
		Campaigns:     a.Repos.Campaigns,
		Verifications: a.Repos.Verifications,
		Queue:         a.Queue,
		Interval:      config.Dur(cfg.Scheduler.Interval, 30*time.Second),
		BatchSize:     cfg.Scheduler.BatchSize,
		Lease:         lease,
	}

	// ─── Services ───
	ownership := &mw.OwnershipCache{Websites: a.Repos.Websites, Cache: a.Cache}
	limits := campaign.DefaultLimits()
	limits.MaxAttachments = cfg.Uploads.MaxAttachments
	limits.MaxAttachmentBytes = cfg.Uploads.MaxAttachmentBytes

	svcs := services.New(services.Deps{
		Auth: authsvc.Deps{
			Users:             a.Repos.Users,
			Verifications:     a.Repos.Verifications,
			Signer:            signer,
			Mailer:            systemMailer(cfg),
			Templates:         templates,
			From:              cfg.SMTP.From,
			BaseURL:           cfg.App.BaseURL,
			VerifyTTL:         cfg.Auth.Verify.TTL,
			PasswordMinLength: cfg.Auth.PasswordMinLength,
			DebugEchoLinks:    cfg.Email.DebugEchoLinks,
		},
		Websites: websitessvc.Deps{Websites: a.Repos.Websites, Ownership: ownership},
		Contacts: contactssvc.Deps{
			Contacts: a.Repos.Contacts,
			Labels:   a.Repos.Labels,
			Tokens:   signer,
			Cache:    a.Cache,
		},
		Labels: labelssvc.Deps{Labels: a.Repos.Labels},
		SMTP: smtpsvc.Deps{
			Configs: a.Repos.SMTPConfigs,
			Secrets: box,
			Timeout: config.Dur(cfg.SMTP.Timeout, 15*time.Second),
		},
		Campaigns: campaignssvc.Deps{
			Campaigns:   a.Repos.Campaigns,
			Recipients:  a.Repos.Recipients,
			SMTPConfigs: a.Repos.SMTPConfigs,
			Queue:       a.Queue,
			Limits:      limits,
		},
		Health: healthsvc.Deps{Checks: map[string]healthsvc.Pinger{
			"storage": a.Repos,
			"cache":   a.Cache,
		}},
	})

	// ─── Controllers + router ───
	cookie := authctrl.CookieConfig{
		Name:     cfg.Auth.Session.CookieName,
		Domain:   cfg.Auth.Session.Domain,
		SameSite: authctrl.ParseSameSite(strings.ToLower(cfg.Auth.Session.SameSite)),
		Secure:   cfg.Auth.Session.Secure,
	}
	a.Handler = router.New(router.Deps{
		Controllers: router.Controllers{
			Auth:      authctrl.NewControllers(svcs.Auth, cookie),
			Websites:  websitesctrl.NewControllers(svcs.Websites),
			Contacts:  contactsctrl.NewControllers(svcs.Contacts, cfg.Uploads.MaxCSVBytes),
			Labels:    labelsctrl.NewControllers(svcs.Labels),
			SMTP:      smtpctrl.NewControllers(svcs.SMTP),
			Campaigns: campaignsctrl.NewControllers(svcs.Campaigns, cfg.Uploads.MaxAttachmentBytes),
			Health:    healthctrl.NewControllers(svcs.Health),
		},
		Session:     signer,
		CookieName:  cookie.Name,
		Ownership:   ownership,
		Limiters:    router.Limiters{Global: rl.global, Login: rl.login, SMTPTest: rl.smtpTest},
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:     metricsHandler,
	})

	logger.L().Info("app wired",
		logger.Component("app"),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.String("queue", cfg.Queue.Kind),
	)
	return a, nil
}

// Close libera en orden inverso a la apertura. Idempotente.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
