package smtp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/email"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/smtp"
	"github.com/dropDatabas3/hellomail/internal/security/secretbox"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

type probeCall struct {
	cfg email.SMTPConfig
	to  string
}

type fakeProbe struct {
	calls []probeCall
	err   error
}

func (f *fakeProbe) probe(_ context.Context, cfg email.SMTPConfig, to string) error {
	f.calls = append(f.calls, probeCall{cfg, to})
	return f.err
}

func setup(t *testing.T) (*memory.Store, *repository.Website, *fakeProbe, *secretbox.Box, Service) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)
	box, err := secretbox.New(strings.Repeat("k", 32))
	require.NoError(t, err)
	fp := &fakeProbe{}
	return st, w, fp, box, NewService(Deps{Configs: st.SMTPConfigs, Secrets: box, Probe: fp.probe})
}

func TestCreateProbesThenEncrypts(t *testing.T) {
	st, w, fp, box, svc := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, w.ID, "owner@x.test", dto.CreateRequest{
		Name: "main", Host: "SMTP.Example.com", Port: 465, User: "sender@acme.test", Password: "s3cret", Secure: true,
	})
	require.NoError(t, err)
	assert.True(t, c.IsDefault, "la primera config es default")

	require.Len(t, fp.calls, 1)
	assert.Equal(t, "owner@x.test", fp.calls[0].to)
	assert.Equal(t, "sender@acme.test", fp.calls[0].cfg.From)
	assert.Equal(t, "ssl", fp.calls[0].cfg.TLSMode)
	assert.Equal(t, "smtp.example.com", fp.calls[0].cfg.Host)

	row, err := st.SMTPConfigs.Get(ctx, w.ID, c.ConfigID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", row.PasswordEnc)
	plain, err := box.Decrypt(row.PasswordEnc)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}

func TestCreateProbeFailureDoesNotPersist(t *testing.T) {
	st, w, fp, _, svc := setup(t)
	ctx := context.Background()
	fp.err = errors.New("535 5.7.8 Username and Password not accepted")

	_, err := svc.Create(ctx, w.ID, "owner@x.test", dto.CreateRequest{Host: "h", Port: 587, User: "apikey", Password: "bad", TestEmail: "qa@x.test"})
	var pe *ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "auth", pe.Code)
	assert.NotEmpty(t, pe.Hint)

	require.Len(t, fp.calls, 1)
	assert.Equal(t, "qa@x.test", fp.calls[0].to)
	assert.Equal(t, "qa@x.test", fp.calls[0].cfg.From, "user no es email: from = destino")
	assert.Equal(t, "auto", fp.calls[0].cfg.TLSMode)

	rows, err := st.SMTPConfigs.List(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestValidationBeforeProbe(t *testing.T) {
	_, _, fp, _, svc := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Test(ctx, "owner@x.test", dto.CreateRequest{Host: "", Port: 25}), ErrMissingFields)
	assert.ErrorIs(t, svc.Test(ctx, "owner@x.test", dto.CreateRequest{Host: "h", Port: 70000}), ErrMissingFields)
	assert.ErrorIs(t, svc.Test(ctx, "", dto.CreateRequest{Host: "h", Port: 25, TestEmail: "nope"}), ErrInvalidTarget)
	assert.Empty(t, fp.calls)

	require.NoError(t, svc.Test(ctx, "owner@x.test", dto.CreateRequest{Host: "h", Port: 25}))
	assert.Len(t, fp.calls, 1)
}

func TestDefaultAndDelete(t *testing.T) {
	_, w, _, _, svc := setup(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, w.ID, "o@x.test", dto.CreateRequest{Name: "a", Host: "h", Port: 25})
	require.NoError(t, err)
	b, err := svc.Create(ctx, w.ID, "o@x.test", dto.CreateRequest{Name: "b", Host: "h", Port: 25})
	require.NoError(t, err)
	assert.False(t, b.IsDefault)

	require.NoError(t, svc.SetDefault(ctx, w.ID, b.ConfigID))
	list, err := svc.List(ctx, w.ID)
	require.NoError(t, err)
	for _, c := range list.Items {
		assert.Equal(t, c.ConfigID == b.ConfigID, c.IsDefault)
	}

	assert.ErrorIs(t, svc.SetDefault(ctx, w.ID, "missing"), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, w.ID, a.ConfigID))
	assert.ErrorIs(t, svc.Delete(ctx, w.ID, a.ConfigID), ErrNotFound)
}
