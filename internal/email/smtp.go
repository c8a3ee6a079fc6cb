package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// SMTPSender implementa Sender y Dialer usando go-mail.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender crea un sender; TLSMode vacío => "auto".
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

// Config retorna la configuración efectiva.
func (s *SMTPSender) Config() SMTPConfig { return s.cfg }

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.Timeout = s.cfg.Timeout
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify, // solo dev
	}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto": go-mail negocia STARTTLS si el server lo ofrece
	}
	return d
}

// buildMessage arma el mensaje MIME. Con HTML y texto => multipart/alternative.
func (s *SMTPSender) buildMessage(m Message) *mail.Message {
	msg := mail.NewMessage()

	from := m.From
	if from == "" {
		from = s.cfg.From
	}
	if m.FromName != "" {
		msg.SetAddressHeader("From", from, m.FromName)
	} else {
		msg.SetHeader("From", from)
	}
	msg.SetHeader("To", m.To)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	if len(m.CC) > 0 {
		msg.SetHeader("Cc", m.CC...)
	}
	if len(m.BCC) > 0 {
		msg.SetHeader("Bcc", m.BCC...)
	}
	msg.SetHeader("Subject", m.Subject)
	for k, v := range m.Headers {
		msg.SetHeader(k, v)
	}

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}

	for _, f := range m.Attachments {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		msg.AttachReader(f.Name, bytes.NewReader(f.Data), mail.SetHeader(map[string][]string{
			"Content-Type": {ct},
		}))
	}
	return msg
}

// Send abre una conexión, envía y cierra.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	log := logger.From(ctx).With(
		logger.Component("smtp"),
		logger.SMTPHost(s.cfg.Host, s.cfg.Port),
	)
	if err := s.dialer().DialAndSend(s.buildMessage(m)); err != nil {
		log.Warn("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("email sent", logger.String("subject", m.Subject))
	return nil
}

// Open abre una sesión reutilizable (un worker del dispatcher = una sesión).
func (s *SMTPSender) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc, err := s.dialer().Dial()
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	return &smtpSession{sender: s, sc: sc}, nil
}

type smtpSession struct {
	sender *SMTPSender
	sc     mail.SendCloser
}

func (ss *smtpSession) Send(m Message) error {
	if err := mail.Send(ss.sc, ss.sender.buildMessage(m)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (ss *smtpSession) Close() error { return ss.sc.Close() }

// Probe verifica credenciales y entrega mandando un mensaje de prueba a `to`.
func Probe(ctx context.Context, cfg SMTPConfig, to string) error {
	s := NewSMTPSender(cfg)
	return s.Send(ctx, Message{
		To:      to,
		Subject: "hellomail SMTP test",
		Text:    "Your SMTP configuration works. You can start sending campaigns.",
		HTML:    "<p>Your SMTP configuration works. You can start sending campaigns.</p>",
	})
}
