package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// MemoryQueue es un canal con buffer. Los reintentos vuelven a encolarse con backoff lineal.
// Lo que quede en el buffer al cerrar se pierde; el scheduler lo recupera por lease.
type MemoryQueue struct {
	// OnDrop, si no es nil, recibe los jobs descartados (permanentes o sin intentos).
	OnDrop DropFunc

	ch          chan Job
	maxAttempts int
	backoff     time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewMemory crea la cola; buffer <= 0 => 64.
func NewMemory(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{
		ch:          make(chan Job, buffer),
		maxAttempts: 3,
		backoff:     2 * time.Second,
		done:        make(chan struct{}),
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, job Job) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	}
}

// Consume procesa jobs de a uno; para paralelismo se llama desde varias goroutines.
func (q *MemoryQueue) Consume(ctx context.Context, h Handler) error {
	log := logger.From(ctx).With(logger.Component("queue.memory"))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case job := <-q.ch:
			err := safeHandle(ctx, h, job)
			if err == nil {
				continue
			}
			if IsPermanent(err) || job.Attempt+1 >= q.maxAttempts {
				log.Error("job dropped", logger.CampaignID(job.CampaignID), logger.Int("attempt", job.Attempt), logger.Err(err))
				if q.OnDrop != nil {
					q.OnDrop(ctx, job, err)
				}
				continue
			}
			log.Warn("job failed, requeue", logger.CampaignID(job.CampaignID), logger.Int("attempt", job.Attempt), logger.Err(err))
			job.Attempt++
			delay := time.Duration(job.Attempt) * q.backoff
			go func(j Job) {
				select {
				case <-time.After(delay):
					_ = q.Publish(context.Background(), j)
				case <-q.done:
				}
			}(job)
		}
	}
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}

// Len retorna los jobs pendientes (tests, readiness).
func (q *MemoryQueue) Len() int { return len(q.ch) }

func safeHandle(ctx context.Context, h Handler, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.From(ctx).Error("job handler panic", logger.CampaignID(job.CampaignID), logger.Any("panic", r))
			err = Permanent(panicError{r})
		}
	}()
	return h(ctx, job)
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("handler panic: %v", p.v) }
