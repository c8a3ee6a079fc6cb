package email

import (
	"context"
	"time"
)

// File es un adjunto ya leído en memoria.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message es un email listo para enviar.
type Message struct {
	From        string
	FromName    string
	To          string
	ReplyTo     string
	CC          []string
	BCC         []string
	Subject     string
	HTML        string
	Text        string
	Headers     map[string]string
	Attachments []File
}

// SMTPConfig son los parámetros de conexión.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Sender envía un mensaje suelto (dial + send + close).
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Session es una conexión SMTP abierta y reutilizable. No es segura para uso concurrente.
type Session interface {
	Send(m Message) error
	Close() error
}

// Dialer abre sesiones contra un servidor SMTP.
type Dialer interface {
	Open(ctx context.Context) (Session, error)
}
