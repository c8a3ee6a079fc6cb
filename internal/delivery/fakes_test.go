package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

type fakeCampaigns struct {
	repository.CampaignRepository
	mu       sync.Mutex
	byID     map[string]*repository.Campaign
	finished map[string]repository.DispatchOutcome
	due      []string
	stale    []string
	touches  int
}

func (f *fakeCampaigns) GetForDispatch(_ context.Context, id string) (*repository.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaigns) Finish(_ context.Context, id string, out repository.DispatchOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished == nil {
		f.finished = map[string]repository.DispatchOutcome{}
	}
	f.finished[id] = out
	f.byID[id].Status = out.Status
	return nil
}

func (f *fakeCampaigns) ClaimDue(_ context.Context, _ time.Time, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := limit
	if n > len(f.due) {
		n = len(f.due)
	}
	out := f.due[:n]
	f.due = f.due[n:]
	return out, nil
}

func (f *fakeCampaigns) Touch(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touches++
	return nil
}

func (f *fakeCampaigns) ClaimStale(_ context.Context, _ time.Time, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.stale))
	out := f.stale[:n]
	f.stale = f.stale[n:]
	return out, nil
}

func (f *fakeCampaigns) touched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touches
}

type fakeContacts struct {
	repository.ContactRepository
	all []repository.Contact
}

// Audience replica el contrato: sin desuscriptos.
func (f *fakeContacts) Audience(_ context.Context, websiteID string, _ repository.RecipientSelector) ([]repository.Contact, error) {
	var out []repository.Contact
	for _, c := range f.all {
		if c.WebsiteID == websiteID && !c.Unsubscribed {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeRecipients struct {
	repository.RecipientRepository
	mu     sync.Mutex
	rows   map[string]*repository.Recipient
	resets []bool
}

func (f *fakeRecipients) Prepare(_ context.Context, campaignID string, contacts []repository.Contact, resetSent bool) ([]repository.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, resetSent)
	if f.rows == nil {
		f.rows = map[string]*repository.Recipient{}
	}
	var out []repository.Recipient
	for _, c := range contacts {
		r := &repository.Recipient{ID: "r-" + c.ID, CampaignID: campaignID, ContactID: c.ID, Email: c.Email, Status: repository.RecipientPending}
		f.rows[r.ID] = r
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecipients) MarkSent(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Status = repository.RecipientSent
	f.rows[id].SentAt = &at
	return nil
}

func (f *fakeRecipients) MarkFailed(_ context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Status = repository.RecipientFailed
	f.rows[id].Error = reason
	return nil
}

type fakeSMTP struct {
	repository.SMTPConfigRepository
	def *repository.SMTPConfig
}

func (f *fakeSMTP) GetDefault(context.Context, string) (*repository.SMTPConfig, error) {
	if f.def == nil {
		return nil, repository.ErrNotFound
	}
	return f.def, nil
}

func (f *fakeSMTP) Get(_ context.Context, _, id string) (*repository.SMTPConfig, error) {
	if f.def == nil || f.def.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.def, nil
}

type plainSecrets struct{}

func (plainSecrets) Decrypt(s string) (string, error) { return s, nil }

type fakeTokens struct{}

func (fakeTokens) IssueUnsubscribe(cid, wid string) (string, error) { return cid + "." + wid, nil }

// fakeDialer registra mensajes y sesiones abiertas; failFor hace fallar destinatarios puntuales.
type fakeDialer struct {
	mu      sync.Mutex
	opened  int
	sent    []email.Message
	failFor map[string]error
	openErr error
	cfg     email.SMTPConfig
	// delay simula un envío lento
	delay time.Duration
}

func (d *fakeDialer) Open(context.Context) (email.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	return &fakeSession{d: d}, nil
}

type fakeSession struct{ d *fakeDialer }

func (s *fakeSession) Send(m email.Message) error {
	if s.d.delay > 0 {
		time.Sleep(s.d.delay)
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.failFor[m.To]; err != nil {
		return err
	}
	s.d.sent = append(s.d.sent, m)
	return nil
}

func (s *fakeSession) Close() error { return nil }

type fakePublisher struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, j queue.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, j)
	return nil
}

type fakeVerifications struct {
	repository.EmailVerificationRepository
	purged int
}

func (f *fakeVerifications) DeleteExpired(context.Context, time.Time) (int, error) {
	return f.purged, nil
}

var errRefused = errors.New("550 5.1.1 user unknown")
