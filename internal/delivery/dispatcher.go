// Package delivery despacha campañas: resuelve la audiencia, crea las filas de destinatarios,
// renderiza y envía con un pool de workers (una conexión SMTP por worker) y cierra la campaña.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellomail/internal/campaign"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/metrics"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

// Decrypter abre la password guardada de una config SMTP.
type Decrypter interface {
	Decrypt(cipherText string) (string, error)
}

// UnsubscribeSigner firma el token del link de baja.
type UnsubscribeSigner interface {
	IssueUnsubscribe(contactID, websiteID string) (string, error)
}

// DialerFunc construye el dialer para una config SMTP ya descifrada.
type DialerFunc func(cfg email.SMTPConfig) email.Dialer

// Deps del dispatcher.
type Deps struct {
	Campaigns   repository.CampaignRepository
	Contacts    repository.ContactRepository
	Recipients  repository.RecipientRepository
	SMTPConfigs repository.SMTPConfigRepository
	Secrets     Decrypter
	Tokens      UnsubscribeSigner
	Dial        DialerFunc
	// BaseURL público de la API, para el link de baja.
	BaseURL     string
	Concurrency int
	SendTimeout time.Duration
	// Heartbeat: cada cuánto se renueva updated_at mientras se envía (0 => sin heartbeat).
	// Tiene que ser menor que el lease del scheduler.
	Heartbeat time.Duration
	Now       func() time.Time
}

type Dispatcher struct {
	d Deps
}

// NewDispatcher aplica defaults: 4 workers, go-mail como dialer.
func NewDispatcher(d Deps) *Dispatcher {
	if d.Concurrency <= 0 {
		d.Concurrency = 4
	}
	if d.SendTimeout <= 0 {
		d.SendTimeout = 30 * time.Second
	}
	if d.Dial == nil {
		d.Dial = func(cfg email.SMTPConfig) email.Dialer { return email.NewSMTPSender(cfg) }
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	d.BaseURL = strings.TrimRight(d.BaseURL, "/")
	return &Dispatcher{d: d}
}

// Report resume un despacho.
type Report struct {
	CampaignID string
	Attempted  int
	Sent       int
	Failed     int
	// Reason explica un fallo de la campaña entera (sin SMTP utilizable).
	Reason  string
	Outcome repository.DispatchOutcome
}

// Handle adapta Dispatch a queue.Handler.
func (x *Dispatcher) Handle(ctx context.Context, job queue.Job) error {
	_, err := x.dispatch(ctx, job)
	return err
}

// Dispatch envía una campaña en status sending. Errores de infraestructura (base caída)
// se retornan tal cual para que la cola reintente; campañas inexistentes o fuera de
// sending se marcan como permanentes.
func (x *Dispatcher) Dispatch(ctx context.Context, campaignID string) (*Report, error) {
	return x.dispatch(ctx, queue.Job{CampaignID: campaignID})
}

// Abandon cierra como failed una campaña cuyo job la cola descartó. Es un queue.DropFunc.
// Si la campaña ya no está en sending no hace nada.
func (x *Dispatcher) Abandon(ctx context.Context, job queue.Job, cause error) {
	log := logger.From(ctx).With(logger.Component("delivery"), logger.CampaignID(job.CampaignID))
	c, err := x.d.Campaigns.GetForDispatch(ctx, job.CampaignID)
	if err != nil || c.Status != repository.CampaignSending {
		return
	}
	rep := &Report{CampaignID: c.ID, Reason: "dispatch abandoned: " + cause.Error()}
	if err := x.finish(ctx, c, rep); err != nil {
		log.Error("abandon failed", logger.Err(err))
		return
	}
	log.Warn("campaign marked failed after dropped job", logger.Err(cause))
}

func (x *Dispatcher) dispatch(ctx context.Context, job queue.Job) (*Report, error) {
	campaignID := job.CampaignID
	log := logger.From(ctx).With(logger.Component("delivery"), logger.CampaignID(campaignID))
	ctx = logger.ToContext(ctx, log)

	c, err := x.d.Campaigns.GetForDispatch(ctx, campaignID)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.CampaignDispatch.WithLabelValues("skipped").Inc()
			return nil, queue.Permanent(fmt.Errorf("campaign %s: %w", campaignID, err))
		}
		return nil, err
	}
	if c.Status != repository.CampaignSending {
		log.Info("campaign not in sending, skip", logger.String("status", string(c.Status)))
		metrics.CampaignDispatch.WithLabelValues("skipped").Inc()
		return nil, queue.Permanent(fmt.Errorf("campaign %s is %s", campaignID, c.Status))
	}
	log = log.With(logger.WebsiteID(c.WebsiteID))
	stop := x.heartbeat(ctx, c.ID)
	defer stop()

	smtpCfg, err := x.smtpFor(ctx, c)
	if err != nil {
		if errors.Is(err, errNoSMTP) {
			log.Warn("no smtp config, campaign failed", logger.Err(err))
			rep := &Report{CampaignID: c.ID, Reason: err.Error()}
			return rep, x.finish(ctx, c, rep)
		}
		return nil, err
	}

	audience, err := x.d.Contacts.Audience(ctx, c.WebsiteID, c.Recipients)
	if err != nil {
		return nil, err
	}
	// sólo la primera corrida de una ocurrencia recurrente resetea los envíos previos
	reset := c.RecurringRule.Recurring() && job.Attempt == 0 && !job.Resume
	pending, err := x.d.Recipients.Prepare(ctx, c.ID, audience, reset)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]repository.Contact, len(audience))
	for _, ct := range audience {
		byID[ct.ID] = ct
	}

	rep := &Report{CampaignID: c.ID, Attempted: len(pending)}
	log.Info("dispatch started", logger.Count(len(pending)), logger.Int("workers", x.workers(len(pending))))

	if err := x.sendAll(ctx, log, c, smtpCfg, pending, byID, rep); err != nil {
		return rep, err
	}
	if err := x.finish(ctx, c, rep); err != nil {
		return rep, err
	}
	log.Info("dispatch finished",
		logger.Int("sent", rep.Sent),
		logger.Int("failed", rep.Failed),
		logger.String("status", string(rep.Outcome.Status)),
	)
	return rep, nil
}

// heartbeat renueva updated_at hasta que se llama a la función retornada.
func (x *Dispatcher) heartbeat(ctx context.Context, campaignID string) func() {
	if x.d.Heartbeat <= 0 {
		return func() {}
	}
	hctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(x.d.Heartbeat)
		defer t.Stop()
		for {
			select {
			case <-hctx.Done():
				return
			case <-t.C:
				if err := x.d.Campaigns.Touch(hctx, campaignID); err != nil && hctx.Err() == nil {
					logger.From(ctx).Warn("campaign heartbeat failed", logger.CampaignID(campaignID), logger.Err(err))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

var errNoSMTP = errors.New("no smtp configuration")

func (x *Dispatcher) smtpFor(ctx context.Context, c *repository.Campaign) (email.SMTPConfig, error) {
	var (
		row *repository.SMTPConfig
		err error
	)
	if c.SMTPConfigID != nil {
		row, err = x.d.SMTPConfigs.Get(ctx, c.WebsiteID, *c.SMTPConfigID)
	} else {
		row, err = x.d.SMTPConfigs.GetDefault(ctx, c.WebsiteID)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return email.SMTPConfig{}, errNoSMTP
		}
		return email.SMTPConfig{}, err
	}
	// relays sin auth se guardan sin password
	var pass string
	if row.PasswordEnc != "" {
		if pass, err = x.d.Secrets.Decrypt(row.PasswordEnc); err != nil {
			return email.SMTPConfig{}, fmt.Errorf("%w: decrypt password: %v", errNoSMTP, err)
		}
	}
	return SMTPConfigFrom(row, pass, c.FromEmail, x.d.SendTimeout), nil
}

// SMTPConfigFrom traduce la fila guardada a la config de go-mail.
func SMTPConfigFrom(row *repository.SMTPConfig, password, from string, timeout time.Duration) email.SMTPConfig {
	mode := "auto"
	if row.Secure {
		mode = "ssl"
	}
	return email.SMTPConfig{
		Host:     row.Host,
		Port:     row.Port,
		Username: row.Username,
		Password: password,
		From:     from,
		TLSMode:  mode,
		Timeout:  timeout,
	}
}

func (x *Dispatcher) workers(n int) int {
	if n < x.d.Concurrency {
		if n == 0 {
			return 1
		}
		return n
	}
	return x.d.Concurrency
}

func (x *Dispatcher) sendAll(ctx context.Context, log *zap.Logger, c *repository.Campaign, cfg email.SMTPConfig,
	pending []repository.Recipient, contacts map[string]repository.Contact, rep *Report) error {

	files := make([]email.File, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		files = append(files, email.File{Name: a.Filename, ContentType: a.ContentType, Data: a.Data})
	}

	jobs := make(chan repository.Recipient)
	var sent, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, r := range pending {
			select {
			case jobs <- r:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	dialer := x.d.Dial(cfg)
	for i := 0; i < x.workers(len(pending)); i++ {
		g.Go(func() error {
			w := &worker{dialer: dialer, log: log}
			defer w.close()
			for r := range jobs {
				ct := contacts[r.ContactID]
				if err := w.send(gctx, x.message(c, ct, r, files)); err != nil {
					atomic.AddInt64(&failed, 1)
					metrics.EmailsSent.WithLabelValues("failed").Inc()
					reason := email.Diagnose(err).Hint() + " (" + err.Error() + ")"
					if merr := x.d.Recipients.MarkFailed(gctx, r.ID, reason); merr != nil {
						return merr
					}
					continue
				}
				atomic.AddInt64(&sent, 1)
				metrics.EmailsSent.WithLabelValues("sent").Inc()
				if merr := x.d.Recipients.MarkSent(gctx, r.ID, x.d.Now().UTC()); merr != nil {
					return merr
				}
			}
			return nil
		})
	}

	err := g.Wait()
	rep.Sent, rep.Failed = int(sent), int(failed)
	return err
}

func (x *Dispatcher) message(c *repository.Campaign, ct repository.Contact, r repository.Recipient, files []email.File) email.Message {
	if ct.ID == "" {
		ct = repository.Contact{ID: r.ContactID, Email: r.Email}
	}
	unsub := x.unsubscribeURL(ct.ID, c.WebsiteID)
	out := campaign.Render(c, ct, unsub)

	m := email.Message{
		From:        c.FromEmail,
		FromName:    c.FromName,
		To:          r.Email,
		ReplyTo:     c.ReplyTo,
		CC:          c.CC,
		BCC:         c.BCC,
		Subject:     out.Subject,
		HTML:        out.HTML,
		Text:        out.Text,
		Attachments: files,
	}
	if unsub != "" {
		m.Headers = map[string]string{
			"List-Unsubscribe":      "<" + unsub + ">",
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		}
	}
	return m
}

func (x *Dispatcher) unsubscribeURL(contactID, websiteID string) string {
	if x.d.Tokens == nil || x.d.BaseURL == "" {
		return ""
	}
	tok, err := x.d.Tokens.IssueUnsubscribe(contactID, websiteID)
	if err != nil {
		return ""
	}
	return x.d.BaseURL + "/unsubscribe?token=" + url.QueryEscape(tok)
}

func (x *Dispatcher) finish(ctx context.Context, c *repository.Campaign, rep *Report) error {
	now := x.d.Now().UTC()
	out := repository.DispatchOutcome{Status: repository.CampaignSent, SentAt: now}
	if rep.Sent == 0 && rep.Failed > 0 {
		out.Status = repository.CampaignFailed
	}
	if rep.Reason != "" {
		out.Status = repository.CampaignFailed
	}

	if c.RecurringRule.Recurring() && rep.Reason == "" {
		prev := now
		if c.ScheduledAt != nil {
			prev = *c.ScheduledAt
		}
		next, err := campaign.Next(c.RecurringRule, prev, c.Timezone, now)
		if err != nil {
			return queue.Permanent(err)
		}
		out.Status = repository.CampaignScheduled
		out.NextRunAt = &next
	}
	rep.Outcome = out

	if err := x.d.Campaigns.Finish(ctx, c.ID, out); err != nil {
		return err
	}
	metrics.CampaignDispatch.WithLabelValues(string(out.Status)).Inc()
	return nil
}

// worker mantiene una sesión SMTP abierta; la reabre si el error deja la conexión rota.
type worker struct {
	dialer email.Dialer
	log    *zap.Logger
	sess   email.Session
}

func (w *worker) send(ctx context.Context, m email.Message) error {
	if w.sess == nil {
		s, err := w.dialer.Open(ctx)
		if err != nil {
			return err
		}
		w.sess = s
	}
	err := w.sess.Send(m)
	if err != nil && email.Diagnose(err).Redial {
		w.log.Debug("smtp session dropped", logger.Err(err))
		w.close()
	}
	return err
}

func (w *worker) close() {
	if w.sess != nil {
		_ = w.sess.Close()
		w.sess = nil
	}
}
