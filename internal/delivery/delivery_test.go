package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	"github.com/dropDatabas3/hellomail/internal/queue"
	"github.com/dropDatabas3/hellomail/internal/security/secretbox"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type env struct {
	campaigns  *fakeCampaigns
	contacts   *fakeContacts
	recipients *fakeRecipients
	smtp       *fakeSMTP
	dialer     *fakeDialer
	d          *Dispatcher
}

func newEnv(c *repository.Campaign, contacts ...repository.Contact) *env {
	e := &env{
		campaigns:  &fakeCampaigns{byID: map[string]*repository.Campaign{c.ID: c}},
		contacts:   &fakeContacts{all: contacts},
		recipients: &fakeRecipients{},
		smtp:       &fakeSMTP{def: &repository.SMTPConfig{ID: "s1", Host: "smtp.acme.io", Port: 465, Secure: true, PasswordEnc: "pw"}},
		dialer:     &fakeDialer{},
	}
	e.d = NewDispatcher(Deps{
		Campaigns:   e.campaigns,
		Contacts:    e.contacts,
		Recipients:  e.recipients,
		SMTPConfigs: e.smtp,
		Secrets:     plainSecrets{},
		Tokens:      fakeTokens{},
		BaseURL:     "https://api.example.com/",
		Concurrency: 2,
		Now:         func() time.Time { return fixedNow },
		Dial: func(cfg email.SMTPConfig) email.Dialer {
			e.dialer.cfg = cfg
			return e.dialer
		},
	})
	return e
}

func sendingCampaign() *repository.Campaign {
	return &repository.Campaign{
		ID:              "c1",
		WebsiteID:       "w1",
		Subject:         "Hi {{first_name}}",
		Body:            "<p>Hello {{first_name}}</p>",
		FromEmail:       "news@acme.io",
		FromName:        "Acme",
		Recipients:      repository.RecipientSelector{All: true},
		SendType:        repository.SendImmediate,
		RecurringRule:   repository.RecurNone,
		FooterLocations: []string{"bottom"},
		Status:          repository.CampaignSending,
		Attachments:     []repository.Attachment{{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
	}
}

func TestDispatch_SkipsUnsubscribedAndRecordsOutcomes(t *testing.T) {
	e := newEnv(sendingCampaign(),
		repository.Contact{ID: "k1", WebsiteID: "w1", FirstName: "Ana", Email: "ana@example.com"},
		repository.Contact{ID: "k2", WebsiteID: "w1", FirstName: "Bob", Email: "bob@example.com", Unsubscribed: true},
		repository.Contact{ID: "k3", WebsiteID: "w1", FirstName: "Cee", Email: "cee@example.com"},
		repository.Contact{ID: "k4", WebsiteID: "other", FirstName: "Dan", Email: "dan@example.com"},
	)
	e.dialer.failFor = map[string]error{"cee@example.com": errRefused}

	rep, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Attempted)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Failed)

	for _, m := range e.dialer.sent {
		assert.NotEqual(t, "bob@example.com", m.To)
	}
	require.Len(t, e.dialer.sent, 1)
	m := e.dialer.sent[0]
	assert.Equal(t, "ana@example.com", m.To)
	assert.Equal(t, "Hi Ana", m.Subject)
	assert.Contains(t, m.HTML, "Hello Ana")
	assert.Contains(t, m.HTML, "https://api.example.com/unsubscribe?token=k1.w1")
	assert.Equal(t, "<https://api.example.com/unsubscribe?token=k1.w1>", m.Headers["List-Unsubscribe"])
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "a.pdf", m.Attachments[0].Name)

	assert.Equal(t, repository.RecipientSent, e.recipients.rows["r-k1"].Status)
	assert.Equal(t, fixedNow, *e.recipients.rows["r-k1"].SentAt)
	assert.Equal(t, repository.RecipientFailed, e.recipients.rows["r-k3"].Status)
	assert.True(t, strings.Contains(e.recipients.rows["r-k3"].Error, "does not exist"))

	assert.Equal(t, repository.CampaignSent, e.campaigns.finished["c1"].Status)
	assert.Equal(t, "ssl", e.dialer.cfg.TLSMode)
	assert.Equal(t, "news@acme.io", e.dialer.cfg.From)
	assert.Equal(t, []bool{false}, e.recipients.resets)
}

func TestDispatch_AllFailed(t *testing.T) {
	e := newEnv(sendingCampaign(), repository.Contact{ID: "k1", WebsiteID: "w1", Email: "ana@example.com"})
	e.dialer.openErr = errRefused

	rep, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, repository.CampaignFailed, e.campaigns.finished["c1"].Status)
}

func TestDispatch_NothingToSend(t *testing.T) {
	e := newEnv(sendingCampaign())
	rep, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)
	assert.Zero(t, rep.Attempted)
	assert.Equal(t, repository.CampaignSent, e.campaigns.finished["c1"].Status)
}

func TestDispatch_NoSMTPConfig(t *testing.T) {
	e := newEnv(sendingCampaign(), repository.Contact{ID: "k1", WebsiteID: "w1", Email: "ana@example.com"})
	e.smtp.def = nil

	rep, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, rep.Reason)
	assert.Equal(t, repository.CampaignFailed, e.campaigns.finished["c1"].Status)
	assert.Empty(t, e.dialer.sent)
}

func TestDispatch_RecurringReschedules(t *testing.T) {
	c := sendingCampaign()
	c.SendType = repository.SendScheduled
	c.RecurringRule = repository.RecurWeekly
	prev := fixedNow.Add(-time.Minute)
	c.ScheduledAt = &prev
	c.Timezone = "UTC"
	e := newEnv(c, repository.Contact{ID: "k1", WebsiteID: "w1", Email: "ana@example.com"})

	_, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)

	out := e.campaigns.finished["c1"]
	assert.Equal(t, repository.CampaignScheduled, out.Status)
	require.NotNil(t, out.NextRunAt)
	assert.Equal(t, prev.AddDate(0, 0, 7), *out.NextRunAt)
	assert.Equal(t, []bool{true}, e.recipients.resets)
}

func TestDispatch_NotSendingIsPermanent(t *testing.T) {
	c := sendingCampaign()
	c.Status = repository.CampaignDraft
	e := newEnv(c)

	_, err := e.d.Dispatch(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, queue.IsPermanent(err))

	_, err = e.d.Dispatch(context.Background(), "missing")
	assert.True(t, queue.IsPermanent(err))
}

func TestDispatch_ReusesSessionPerWorker(t *testing.T) {
	var contacts []repository.Contact
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		contacts = append(contacts, repository.Contact{ID: id, WebsiteID: "w1", Email: id + "@example.com"})
	}
	e := newEnv(sendingCampaign(), contacts...)

	rep, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Sent)
	assert.LessOrEqual(t, e.dialer.opened, 2)
}

func TestScheduler_TickClaimsAndPurges(t *testing.T) {
	camps := &fakeCampaigns{byID: map[string]*repository.Campaign{}, due: []string{"a", "b", "c"}}
	pub := &fakePublisher{}
	s := &Scheduler{
		Campaigns:     camps,
		Verifications: &fakeVerifications{purged: 4},
		Queue:         pub,
		BatchSize:     2,
		Now:           func() time.Time { return fixedNow },
	}

	res, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Claimed)
	assert.Equal(t, 4, res.Purged)
	require.Len(t, pub.jobs, 3)
	assert.Equal(t, fixedNow, pub.jobs[0].EnqueuedAt)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := &Scheduler{
		Campaigns: &fakeCampaigns{byID: map[string]*repository.Campaign{}},
		Queue:     &fakePublisher{},
		Interval:  5 * time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMTPConfigFrom(t *testing.T) {
	cfg := SMTPConfigFrom(&repository.SMTPConfig{Host: "h", Port: 587, Username: "u"}, "p", "f@x.io", time.Second)
	assert.Equal(t, "auto", cfg.TLSMode)
	assert.Equal(t, "p", cfg.Password)
	assert.Equal(t, "f@x.io", cfg.From)
}

func TestDispatch_RealSecretBoxWithAndWithoutPassword(t *testing.T) {
	box, err := secretbox.New(strings.Repeat("k", 32))
	require.NoError(t, err)
	enc, err := box.Encrypt("relay-pass")
	require.NoError(t, err)

	cases := []struct {
		name     string
		stored   string
		wantPass string
	}{
		{"relay sin auth", "", ""},
		{"password cifrada", enc, "relay-pass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(sendingCampaign(),
				repository.Contact{ID: "k1", WebsiteID: "w1", FirstName: "Ana", Email: "ana@example.com"})
			e.smtp.def.PasswordEnc = tc.stored
			e.d.d.Secrets = box

			rep, err := e.d.Dispatch(context.Background(), "c1")
			require.NoError(t, err)
			assert.Empty(t, rep.Reason)
			assert.Equal(t, 1, rep.Sent)
			assert.Equal(t, tc.wantPass, e.dialer.cfg.Password)
			assert.Equal(t, repository.CampaignSent, e.campaigns.finished["c1"].Status)
		})
	}
}

func TestDispatch_ResumedRecurringKeepsSentRows(t *testing.T) {
	c := sendingCampaign()
	c.SendType = repository.SendScheduled
	c.RecurringRule = repository.RecurDaily
	prev := fixedNow.Add(-time.Minute)
	c.ScheduledAt = &prev
	e := newEnv(c, repository.Contact{ID: "k1", WebsiteID: "w1", Email: "ana@example.com"})

	require.NoError(t, e.d.Handle(context.Background(), queue.Job{CampaignID: "c1", Resume: true}))
	assert.Equal(t, []bool{false}, e.recipients.resets)
}

func TestDispatch_AbandonMarksFailed(t *testing.T) {
	e := newEnv(sendingCampaign())

	e.d.Abandon(context.Background(), queue.Job{CampaignID: "c1", Attempt: 2}, errors.New("smtp down"))
	out := e.campaigns.finished["c1"]
	assert.Equal(t, repository.CampaignFailed, out.Status)

	// ya no está en sending: un segundo aviso no hace nada
	e.campaigns.finished = nil
	e.d.Abandon(context.Background(), queue.Job{CampaignID: "c1"}, errors.New("again"))
	assert.Nil(t, e.campaigns.finished)

	// campaña inexistente
	e.d.Abandon(context.Background(), queue.Job{CampaignID: "ghost"}, errors.New("x"))
}

func TestDispatch_HeartbeatWhileSending(t *testing.T) {
	e := newEnv(sendingCampaign(), repository.Contact{ID: "k1", WebsiteID: "w1", Email: "ana@example.com"})
	e.d.d.Heartbeat = 5 * time.Millisecond
	e.dialer.delay = 40 * time.Millisecond

	_, err := e.d.Dispatch(context.Background(), "c1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, e.campaigns.touched(), 2)

	// terminado el despacho no hay más heartbeats
	n := e.campaigns.touched()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, e.campaigns.touched())
}

func TestScheduler_TickRecoversStaleSending(t *testing.T) {
	camps := &fakeCampaigns{byID: map[string]*repository.Campaign{}, stale: []string{"s1", "s2"}}
	pub := &fakePublisher{}
	s := &Scheduler{Campaigns: camps, Queue: pub, Lease: 15 * time.Minute, Now: func() time.Time { return fixedNow }}

	res, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Claimed)
	assert.Equal(t, []string{"s1", "s2"}, res.Recovered)
	require.Len(t, pub.jobs, 2)
	assert.True(t, pub.jobs[0].Resume)

	// sin lease no se recupera nada
	camps.stale = []string{"s3"}
	s.Lease = 0
	res, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Recovered)
}
