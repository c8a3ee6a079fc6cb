package email

import (
	"errors"
	"net"
	"strings"
)

// Diagnosis clasifica un error SMTP.
type Diagnosis struct {
	Code string // timeout|dial|tls|auth|throttled|bad_recipient|rejected|network|unknown
	// Retry indica si el mismo mensaje puede reintentarse más tarde.
	Retry bool
	// Redial indica que la conexión quedó inutilizable y la sesión debe reabrirse.
	Redial bool
}

// Hint es un texto corto para el usuario (test de SMTP, motivo de fallo del destinatario).
func (d Diagnosis) Hint() string {
	switch d.Code {
	case "timeout":
		return "The SMTP server did not answer in time."
	case "dial":
		return "Could not connect to the SMTP server. Check host and port."
	case "tls":
		return "TLS negotiation failed. Check the security mode and certificate."
	case "auth":
		return "The SMTP server rejected the username or password."
	case "throttled":
		return "The SMTP server is throttling, try again later."
	case "bad_recipient":
		return "The recipient address does not exist."
	case "rejected":
		return "The SMTP server rejected the message."
	case "network":
		return "Network error while talking to the SMTP server."
	}
	return "Unexpected SMTP error."
}

type rule struct {
	diag    Diagnosis
	needles []string
}

// el orden importa: el primer match gana
var rules = []rule{
	{Diagnosis{Code: "timeout", Retry: true, Redial: true}, []string{"timeout", "deadline exceeded"}},
	{Diagnosis{Code: "dial", Retry: true, Redial: true}, []string{"connection refused", "no such host", "dial tcp", "connectex:"}},
	{Diagnosis{Code: "tls", Redial: true}, []string{"x509:", "tls: handshake", "tls: failed", "certificate"}},
	{Diagnosis{Code: "auth", Redial: true}, []string{"535", "5.7.8", "authentication failed", "username and password not accepted", "auth failed"}},
	{Diagnosis{Code: "throttled", Retry: true, Redial: true}, []string{"421", "451", "4.7.0", "rate limit", "try again later", "temporarily unavailable"}},
	{Diagnosis{Code: "bad_recipient"}, []string{"550 5.1.1", "5.1.1", "user unknown", "mailbox not found", "no such user"}},
	{Diagnosis{Code: "rejected"}, []string{"5.7.1", "message rejected", "policy", "dmarc", "spf"}},
	{Diagnosis{Code: "network", Retry: true, Redial: true}, []string{"broken pipe", "connection reset", "eof"}},
}

// Diagnose analiza el error retornado por Send/Open.
func Diagnose(err error) Diagnosis {
	if err == nil {
		return Diagnosis{Code: "unknown"}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Diagnosis{Code: "timeout", Retry: true, Redial: true}
	}
	s := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(s, n) {
				return r.diag
			}
		}
	}
	if errors.As(err, &ne) {
		return Diagnosis{Code: "network", Retry: true, Redial: true}
	}
	return Diagnosis{Code: "unknown"}
}
