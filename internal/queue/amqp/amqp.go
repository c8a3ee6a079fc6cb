// Package amqp implementa queue.Queue sobre RabbitMQ: exchange topic durable, cola durable
// bindeada a una routing key, mensajes persistentes y ack manual.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

type Config struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
	Prefetch   int
	// OnDrop recibe los jobs rechazados sin requeue.
	OnDrop queue.DropFunc
}

func (c *Config) defaults() {
	if c.Exchange == "" {
		c.Exchange = "hellomail"
	}
	if c.Queue == "" {
		c.Queue = "hellomail.campaign.dispatch"
	}
	if c.RoutingKey == "" {
		c.RoutingKey = "campaign.dispatch"
	}
	if c.Prefetch <= 0 {
		c.Prefetch = 4
	}
}

// Queue mantiene una conexión y un canal para publicar; Consume abre su propio canal.
type Queue struct {
	cfg  Config
	conn *amqp091.Connection

	mu  sync.Mutex // amqp091.Channel no es seguro para publicar en paralelo
	pub *amqp091.Channel
}

var _ queue.Queue = (*Queue)(nil)

// Dial conecta y declara exchange, cola y binding.
func Dial(cfg Config) (*Queue, error) {
	cfg.defaults()
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := declare(ch, cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	logger.L().Info("amqp queue ready",
		logger.Component("queue.amqp"),
		logger.String("exchange", cfg.Exchange),
		logger.String("queue", cfg.Queue),
		logger.String("routing_key", cfg.RoutingKey),
	)
	return &Queue{cfg: cfg, conn: conn, pub: ch}, nil
}

func declare(ch *amqp091.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish envía el job como JSON persistente.
func (q *Queue) Publish(ctx context.Context, job queue.Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	body, err := Encode(job)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.conn.IsClosed() {
		return queue.ErrClosed
	}
	return q.pub.PublishWithContext(ctx, q.cfg.Exchange, q.cfg.RoutingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    job.CampaignID,
		Timestamp:    job.EnqueuedAt,
		Body:         body,
	})
}

// Consume procesa entregas hasta que ctx se cancela. Éxito => ack; error permanente o
// payload ilegible => nack sin requeue; cualquier otro error => nack con requeue.
func (q *Queue) Consume(ctx context.Context, h queue.Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(q.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	deliveries, err := ch.Consume(q.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	log := logger.From(ctx).With(logger.Component("queue.amqp"), logger.String("queue", q.cfg.Queue))
	log.Info("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return queue.ErrClosed
			}
			settle(ctx, log, d, h, q.cfg.OnDrop)
		}
	}
}

// acknowledger es la parte de amqp091.Delivery que usa settle.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ctx context.Context, log *zap.Logger, d amqp091.Delivery, h queue.Handler, onDrop queue.DropFunc) {
	job, err := Decode(d.Body)
	if err != nil {
		log.Error("bad payload, dropping", logger.Err(err))
		_ = d.Nack(false, false)
		return
	}
	if d.Redelivered {
		job.Attempt++
	}
	ack(ctx, log, d, job, h, onDrop)
}

func ack(ctx context.Context, log *zap.Logger, a acknowledger, job queue.Job, h queue.Handler, onDrop queue.DropFunc) {
	err := run(ctx, h, job)
	switch {
	case err == nil:
		if aerr := a.Ack(false); aerr != nil {
			log.Error("ack failed", logger.CampaignID(job.CampaignID), logger.Err(aerr))
		}
	case queue.IsPermanent(err):
		log.Error("job rejected", logger.CampaignID(job.CampaignID), logger.Err(err))
		_ = a.Nack(false, false)
		if onDrop != nil {
			onDrop(ctx, job, err)
		}
	default:
		log.Warn("job failed, requeue", logger.CampaignID(job.CampaignID), logger.Err(err))
		_ = a.Nack(false, true)
	}
}

func run(ctx context.Context, h queue.Handler, job queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = queue.Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return h(ctx, job)
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pub != nil {
		_ = q.pub.Close()
	}
	return q.conn.Close()
}

// Encode/Decode del payload JSON.
func Encode(job queue.Job) ([]byte, error) { return json.Marshal(job) }

func Decode(b []byte) (queue.Job, error) {
	var j queue.Job
	if err := json.Unmarshal(b, &j); err != nil {
		return j, fmt.Errorf("decode job: %w", err)
	}
	if j.CampaignID == "" {
		return j, fmt.Errorf("decode job: missing campaign_id")
	}
	return j, nil
}
