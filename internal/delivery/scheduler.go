package delivery

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

// Scheduler reclama campañas programadas vencidas y publica sus jobs.
// Con Lease > 0 también re-publica campañas en sending sin heartbeat (job perdido,
// worker caído, publish fallido). Purga tokens de verificación vencidos en cada tick.
type Scheduler struct {
	Campaigns     repository.CampaignRepository
	Verifications repository.EmailVerificationRepository
	Queue         queue.Publisher
	Interval      time.Duration
	BatchSize     int
	Lease         time.Duration
	Now           func() time.Time
}

// TickResult es lo que hizo un tick.
type TickResult struct {
	Claimed   []string
	Recovered []string
	Purged    int
}

// Tick corre una pasada. Sigue reclamando de a BatchSize hasta vaciar las vencidas.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	var res TickResult
	now := s.now()
	batch := s.BatchSize
	if batch <= 0 {
		batch = 20
	}

	for {
		ids, err := s.Campaigns.ClaimDue(ctx, now, batch)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			// si falla, la campaña queda en sending y la recupera el lease
			if err := s.Queue.Publish(ctx, queue.Job{CampaignID: id, EnqueuedAt: now}); err != nil {
				return res, err
			}
			res.Claimed = append(res.Claimed, id)
		}
		if len(ids) < batch {
			break
		}
	}

	if s.Lease > 0 {
		ids, err := s.Campaigns.ClaimStale(ctx, now.Add(-s.Lease), batch)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			if err := s.Queue.Publish(ctx, queue.Job{CampaignID: id, EnqueuedAt: now, Resume: true}); err != nil {
				return res, err
			}
			res.Recovered = append(res.Recovered, id)
		}
	}

	if s.Verifications != nil {
		n, err := s.Verifications.DeleteExpired(ctx, now)
		if err != nil {
			return res, err
		}
		res.Purged = n
	}
	return res, nil
}

// Run llama a Tick cada Interval hasta que ctx se cancela. Los errores se loguean.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	log := logger.From(ctx).With(logger.Component("scheduler"))
	log.Info("scheduler started", logger.Duration(interval))

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		res, err := s.Tick(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("scheduler tick failed", logger.Err(err))
		case len(res.Claimed) > 0 || len(res.Recovered) > 0 || res.Purged > 0:
			log.Info("scheduler tick",
				logger.Count(len(res.Claimed)),
				logger.Int("recovered", len(res.Recovered)),
				logger.Int("purged_tokens", res.Purged),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
