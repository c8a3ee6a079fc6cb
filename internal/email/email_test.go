package email

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_Headers(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"})
	msg := s.buildMessage(Message{
		FromName: "Acme",
		To:       "ana@example.com",
		ReplyTo:  "support@example.com",
		CC:       []string{"cc@example.com"},
		Subject:  "Hola",
		HTML:     "<p>hi</p>",
		Text:     "hi",
		Headers:  map[string]string{"List-Unsubscribe": "<https://x/u>"},
	})

	assert.Equal(t, []string{`"Acme" <noreply@example.com>`}, msg.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"support@example.com"}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"cc@example.com"}, msg.GetHeader("Cc"))
	assert.Equal(t, []string{"<https://x/u>"}, msg.GetHeader("List-Unsubscribe"))
}

func TestBuildMessage_ExplicitFromWins(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "default@example.com"})
	msg := s.buildMessage(Message{From: "news@acme.io", To: "a@b.co", Text: "x"})
	assert.Equal(t, []string{"news@acme.io"}, msg.GetHeader("From"))
}

func TestNewSMTPSender_Defaults(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h"})
	assert.Equal(t, "auto", s.Config().TLSMode)
	assert.Equal(t, 15*time.Second, s.Config().Timeout)
}

func TestDialer_TLSModes(t *testing.T) {
	ssl := NewSMTPSender(SMTPConfig{Host: "h", Port: 465, TLSMode: "ssl"}).dialer()
	assert.True(t, ssl.SSL)

	auto := NewSMTPSender(SMTPConfig{Host: "h", Port: 587}).dialer()
	assert.False(t, auto.SSL)
	assert.Equal(t, "h", auto.TLSConfig.ServerName)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestDiagnose(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		retry  bool
		redial bool
	}{
		{timeoutErr{}, "timeout", true, true},
		{errors.New("dial tcp 10.0.0.1:25: connect: connection refused"), "dial", true, true},
		{errors.New("535 5.7.8 Username and Password not accepted"), "auth", false, true},
		{errors.New("421 4.7.0 Try again later"), "throttled", true, true},
		{errors.New("550 5.1.1 user unknown"), "bad_recipient", false, false},
		{errors.New("554 5.7.1 message rejected by policy"), "rejected", false, false},
		{errors.New("something odd"), "unknown", false, false},
	}
	for _, c := range cases {
		d := Diagnose(c.err)
		assert.Equal(t, c.code, d.Code, c.err.Error())
		assert.Equal(t, c.retry, d.Retry, c.err.Error())
		assert.Equal(t, c.redial, d.Redial, c.err.Error())
		assert.NotEmpty(t, d.Hint())
	}
}

func TestRenderVerify(t *testing.T) {
	tpls, err := LoadTemplates()
	require.NoError(t, err)

	html, text, err := tpls.RenderVerify(VerifyVars{
		UserEmail: "ana@example.com",
		Link:      "https://app.example.com/verify?token=a&b",
		TTL:       "48h",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "token=a&amp;b")
	assert.Contains(t, html, "Hi ana@example.com")
	assert.Contains(t, text, "https://app.example.com/verify?token=a&b")
	assert.True(t, strings.Contains(text, "48h"))
}

func TestLogSender(t *testing.T) {
	require.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@b.co", Subject: "s"}))
}
