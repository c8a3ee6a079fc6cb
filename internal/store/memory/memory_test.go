package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

func seed(t *testing.T) (*Store, *repository.User, *repository.Website) {
	t.Helper()
	s := New()
	ctx := context.Background()
	u, err := s.Users.Create(ctx, repository.CreateUserInput{Email: "Owner@Example.com", Name: "Owner", PasswordHash: "x"})
	require.NoError(t, err)
	w, err := s.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme", Domain: "acme.test"})
	require.NoError(t, err)
	return s, u, w
}

func TestUsersEmailUniqueCaseInsensitive(t *testing.T) {
	s, u, _ := seed(t)
	assert.Equal(t, "owner@example.com", u.Email)
	_, err := s.Users.Create(context.Background(), repository.CreateUserInput{Email: "OWNER@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestVerificationConsumeOnce(t *testing.T) {
	s, u, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Verifications.Replace(ctx, u.ID, "h1", time.Now().Add(time.Hour)))
	require.NoError(t, s.Verifications.Replace(ctx, u.ID, "h2", time.Now().Add(time.Hour)))

	_, err := s.Verifications.Lookup(ctx, "h1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "Replace borra tokens previos")

	flipped, err := s.Verifications.Consume(ctx, u.ID, "h2")
	require.NoError(t, err)
	assert.True(t, flipped)
	before := s.Writes()
	flipped, err = s.Verifications.Consume(ctx, u.ID, "h2")
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, before, s.Writes())

	// el token sobrevive para que el re-click vea al usuario ya verificado
	p, err := s.Verifications.Lookup(ctx, "h2")
	require.NoError(t, err)
	assert.True(t, p.IsVerified)
}

func TestAudienceSkipsUnsubscribedAndDedups(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	l, err := s.Labels.Create(ctx, w.ID, repository.LabelInput{Name: "vip", Color: "#fff"})
	require.NoError(t, err)

	a, err := s.Contacts.Create(ctx, w.ID, repository.ContactInput{FirstName: "A", Email: "a@x.test", LabelID: &l.ID})
	require.NoError(t, err)
	b, err := s.Contacts.Create(ctx, w.ID, repository.ContactInput{FirstName: "B", Email: "b@x.test"})
	require.NoError(t, err)
	require.NoError(t, s.Contacts.SetUnsubscribed(ctx, w.ID, b.ID))

	got, err := s.Contacts.Audience(ctx, w.ID, repository.RecipientSelector{ContactIDs: []string{a.ID, b.ID}, LabelIDs: []string{l.ID}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	_, err = s.Contacts.Create(ctx, w.ID, repository.ContactInput{FirstName: "A2", Email: "A@X.test"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestLabelDeleteClearsContacts(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	l, err := s.Labels.Create(ctx, w.ID, repository.LabelInput{Name: "vip", Color: "#fff"})
	require.NoError(t, err)
	c, err := s.Contacts.Create(ctx, w.ID, repository.ContactInput{FirstName: "A", Email: "a@x.test", LabelID: &l.ID})
	require.NoError(t, err)

	require.NoError(t, s.Labels.Delete(ctx, w.ID, l.ID))
	got, err := s.Contacts.Get(ctx, w.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LabelID)
}

func TestSMTPDefaultPromotion(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	clock := time.Now()
	s.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	first, err := s.SMTPConfigs.Create(ctx, w.ID, repository.CreateSMTPConfigInput{Name: "one", Host: "h", Port: 25})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	second, err := s.SMTPConfigs.Create(ctx, w.ID, repository.CreateSMTPConfigInput{Name: "two", Host: "h", Port: 25})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	require.NoError(t, s.SMTPConfigs.Delete(ctx, w.ID, first.ID))
	def, err := s.SMTPConfigs.GetDefault(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestCampaignLifecycle(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	at := time.Now().Add(-time.Minute)

	_, err := s.Campaigns.Create(ctx, repository.Campaign{WebsiteID: w.ID, SendType: repository.SendScheduled, Status: repository.CampaignScheduled})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	c, err := s.Campaigns.Create(ctx, repository.Campaign{
		WebsiteID:   w.ID,
		Subject:     "hi",
		SendType:    repository.SendScheduled,
		ScheduledAt: &at,
		Status:      repository.CampaignScheduled,
		Attachments: []repository.Attachment{{Filename: "a.txt", Data: []byte("abc")}},
	})
	require.NoError(t, err)
	require.Len(t, c.Attachments, 1)
	assert.Nil(t, c.Attachments[0].Data)
	assert.EqualValues(t, 3, c.Attachments[0].Size)

	ids, err := s.Campaigns.ClaimDue(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids)
	assert.ErrorIs(t, s.Campaigns.Delete(ctx, w.ID, c.ID), repository.ErrConflict)

	full, err := s.Campaigns.GetForDispatch(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), full.Attachments[0].Data)

	require.NoError(t, s.Campaigns.Finish(ctx, c.ID, repository.DispatchOutcome{Status: repository.CampaignSent, SentAt: time.Now()}))
	assert.ErrorIs(t, s.Campaigns.Finish(ctx, c.ID, repository.DispatchOutcome{Status: repository.CampaignSent}), repository.ErrConflict)
	require.NoError(t, s.Campaigns.Delete(ctx, w.ID, c.ID))
}

func TestRecipientsPrepareKeepsSent(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()
	contacts := []repository.Contact{{ID: "c1", Email: "a@x.test"}, {ID: "c2", Email: "b@x.test"}}

	rows, err := s.Recipients.Prepare(ctx, "camp", contacts, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NoError(t, s.Recipients.MarkSent(ctx, rows[0].ID, time.Now()))

	again, err := s.Recipients.Prepare(ctx, "camp", contacts, false)
	require.NoError(t, err)
	assert.Len(t, again, 1)

	reset, err := s.Recipients.Prepare(ctx, "camp", contacts, true)
	require.NoError(t, err)
	assert.Len(t, reset, 2)

	counts, err := s.Recipients.Counts(ctx, "camp")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[repository.RecipientPending])
}

func TestCampaignClaimStaleSkipsTouched(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	clock := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return clock })

	at := clock.Add(-time.Minute)
	var ids []string
	for _, subj := range []string{"one", "two"} {
		c, err := s.Campaigns.Create(ctx, repository.Campaign{WebsiteID: w.ID, Subject: subj, SendType: repository.SendScheduled, ScheduledAt: &at, Status: repository.CampaignScheduled})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	claimed, err := s.Campaigns.ClaimDue(ctx, clock, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)

	clock = clock.Add(10 * time.Minute)
	require.NoError(t, s.Campaigns.Touch(ctx, ids[1]))

	stale, err := s.Campaigns.ClaimStale(ctx, clock.Add(-5*time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0]}, stale)

	// reclamada de nuevo renueva el lease
	stale, err = s.Campaigns.ClaimStale(ctx, clock.Add(-5*time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// sólo campañas en sending
	require.NoError(t, s.Campaigns.Finish(ctx, ids[0], repository.DispatchOutcome{Status: repository.CampaignSent, SentAt: clock}))
	clock = clock.Add(time.Hour)
	stale, err = s.Campaigns.ClaimStale(ctx, clock, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, stale)
}

func TestContactBulkInsertUnknownWebsiteWritesNothing(t *testing.T) {
	s, _, w := seed(t)
	ctx := context.Background()
	in := []repository.ContactInput{{Email: "a@x.test"}, {Email: "b@x.test"}}

	n, err := s.Contacts.BulkInsert(ctx, "missing", in)
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Zero(t, n)

	n, err = s.Contacts.BulkInsert(ctx, w.ID, append(in, repository.ContactInput{Email: "a@x.test"}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
