package campaigns

import (
	"context"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/campaign"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/queue"
)

// SendService finaliza una campaña: la manda ya (202) o la programa (201).
type SendService interface {
	Send(ctx context.Context, websiteID string, in dto.SendRequest) (*dto.SendResponse, error)
}

type sendService struct{ deps Deps }

func NewSendService(d Deps) SendService { return &sendService{deps: d} }

func submission(in dto.SendRequest) campaign.Submission {
	return campaign.Submission{
		Subject:         in.Subject,
		Body:            in.Body,
		FromName:        in.FromName,
		FromEmail:       in.FromEmail,
		ReplyTo:         in.ReplyTo,
		CC:              in.CC,
		BCC:             in.BCC,
		Recipients:      in.Recipients,
		SMTPConfigID:    in.SMTPConfigID,
		SendType:        in.SendType,
		ScheduledAt:     in.ScheduledAt,
		Timezone:        in.Timezone,
		RecurringRule:   in.RecurringRule,
		Tags:            in.Tags,
		FooterLocations: in.FooterLocations,
		SocialMedia:     in.SocialMedia,
		CompanyInfo:     in.CompanyInfo,
	}
}

// Send valida el form completo antes de cualquier lectura o escritura.
func (s *sendService) Send(ctx context.Context, websiteID string, in dto.SendRequest) (*dto.SendResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("campaigns"), logger.Op("Send"), logger.WebsiteID(websiteID))
	now := s.deps.Now()

	c, err := campaign.Validate(submission(in), now, s.deps.Limits)
	if err != nil {
		return nil, err
	}
	c.Attachments = attachments(in.Attachments)
	if err := campaign.Ready(c, now, s.deps.Limits); err != nil {
		return nil, err
	}

	if err := checkSMTP(ctx, s.deps.SMTPConfigs, websiteID, c.SMTPConfigID); err != nil {
		return nil, err
	}

	c.WebsiteID = websiteID
	c.Status = repository.CampaignScheduled
	if c.SendType == repository.SendImmediate {
		c.Status = repository.CampaignSending
	}

	var saved *repository.Campaign
	if id := strings.TrimSpace(in.CampaignID); id != "" {
		cur, err := s.deps.Campaigns.Get(ctx, websiteID, id)
		if err != nil {
			return nil, mapRepoErr(err)
		}
		if cur.Status != repository.CampaignDraft {
			return nil, ErrLocked
		}
		// los adjuntos del draft se suman a los del form
		merged := c
		merged.Attachments = append(append([]repository.Attachment{}, cur.Attachments...), c.Attachments...)
		if err := campaign.Ready(merged, now, s.deps.Limits); err != nil {
			return nil, err
		}
		c.ID = id
		saved, err = s.deps.Campaigns.UpdateDraft(ctx, c)
		if err != nil {
			return nil, mapRepoErr(err)
		}
	} else {
		saved, err = s.deps.Campaigns.Create(ctx, c)
		if err != nil {
			log.Error("campaign create failed", logger.Err(err))
			return nil, err
		}
	}
	log = log.With(logger.CampaignID(saved.ID))

	if saved.Status == repository.CampaignSending {
		err := s.deps.Queue.Publish(ctx, queue.Job{CampaignID: saved.ID, EnqueuedAt: now.UTC()})
		if err != nil {
			log.Error("dispatch publish failed", logger.Err(err))
			if ferr := s.deps.Campaigns.Finish(ctx, saved.ID, repository.DispatchOutcome{Status: repository.CampaignFailed}); ferr != nil {
				log.Error("mark campaign failed", logger.Err(ferr))
			}
			return nil, ErrQueueUnavailable
		}
		log.Info("campaign queued")
	} else {
		log.Info("campaign scheduled", logger.Any("scheduled_at", saved.ScheduledAt))
	}

	return &dto.SendResponse{CampaignID: saved.ID, Status: string(saved.Status), ScheduledAt: saved.ScheduledAt}, nil
}
