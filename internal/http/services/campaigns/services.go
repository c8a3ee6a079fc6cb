// Package campaigns contiene drafts, envío y consulta de campañas.
package campaigns

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/hellomail/internal/campaign"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

var (
	ErrNotFound           = errors.New("campaign not found")
	ErrLocked             = errors.New("campaign can no longer be modified")
	ErrSMTPConfigNotFound = errors.New("smtp config not found")
	ErrQueueUnavailable   = errors.New("dispatch queue unavailable")
)

type Deps struct {
	Campaigns   repository.CampaignRepository
	Recipients  repository.RecipientRepository
	SMTPConfigs repository.SMTPConfigRepository
	Queue       queue.Publisher
	Limits      campaign.Limits
	Now         func() time.Time
}

type Services struct {
	Drafts    DraftService
	Send      SendService
	Campaigns QueryService
}

func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Limits == (campaign.Limits{}) {
		d.Limits = campaign.DefaultLimits()
	}
	return Services{
		Drafts:    NewDraftService(d),
		Send:      NewSendService(d),
		Campaigns: NewQueryService(d),
	}
}

// checkSMTP verifica que la config elegida sea del website.
func checkSMTP(ctx context.Context, repo repository.SMTPConfigRepository, websiteID string, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := repo.Get(ctx, websiteID, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSMTPConfigNotFound
		}
		return err
	}
	return nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrLocked
	}
	return err
}
