// Package queue transporta los jobs de despacho de campañas entre la API/scheduler y los
// workers. Hay dos drivers: memory (canal en proceso) y amqp (RabbitMQ).
package queue

import (
	"context"
	"errors"
	"time"
)

// Job pide despachar una campaña que ya está en status sending.
type Job struct {
	CampaignID string    `json:"campaign_id"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	// Resume: re-despacho de una corrida interrumpida; no se resetean envíos ya hechos.
	Resume bool `json:"resume,omitempty"`
}

// Handler procesa un job. Un error envuelto con Permanent no se reintenta.
type Handler func(ctx context.Context, job Job) error

// DropFunc se llama cuando un job se descarta sin más reintentos.
type DropFunc func(ctx context.Context, job Job, err error)

type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

type Consumer interface {
	// Consume bloquea hasta que ctx se cancela o el transporte se cierra.
	Consume(ctx context.Context, h Handler) error
}

type Queue interface {
	Publisher
	Consumer
	Close() error
}

// ErrClosed se retorna al publicar en una cola cerrada.
var ErrClosed = errors.New("queue closed")

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marca un error que no tiene sentido reintentar.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reporta si err (o alguno que envuelve) fue marcado con Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
