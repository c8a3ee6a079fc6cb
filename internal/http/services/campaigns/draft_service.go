package campaigns

import (
	"context"

	"github.com/dropDatabas3/hellomail/internal/campaign"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// DraftService guarda el wizard paso a paso. Sólo valida la forma de los campos presentes.
type DraftService interface {
	Create(ctx context.Context, websiteID string, in dto.DraftRequest) (*dto.Campaign, error)
	// Update mergea los campos presentes. ErrLocked si la campaña ya no es draft.
	Update(ctx context.Context, websiteID, campaignID string, in dto.DraftRequest) (*dto.Campaign, error)
}

type draftService struct{ deps Deps }

func NewDraftService(d Deps) DraftService { return &draftService{deps: d} }

// apply pisa en s los campos presentes de in.
func apply(s campaign.Submission, in dto.DraftRequest) campaign.Submission {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	list := func(dst *[]string, v *[]string) {
		if v != nil {
			*dst = *v
		}
	}
	str(&s.Subject, in.Subject)
	str(&s.Body, in.Body)
	str(&s.FromName, in.FromName)
	str(&s.FromEmail, in.FromEmail)
	str(&s.ReplyTo, in.ReplyTo)
	list(&s.CC, in.CC)
	list(&s.BCC, in.BCC)
	str(&s.SMTPConfigID, in.SMTPConfigID)
	str(&s.SendType, in.SendType)
	str(&s.ScheduledAt, in.ScheduledAt)
	str(&s.Timezone, in.Timezone)
	str(&s.RecurringRule, in.RecurringRule)
	list(&s.Tags, in.Tags)
	list(&s.FooterLocations, in.FooterLocations)
	if in.Recipients != nil {
		s.Recipients = *in.Recipients
	}
	if in.SocialMedia != nil {
		s.SocialMedia = *in.SocialMedia
	}
	if in.CompanyInfo != nil {
		s.CompanyInfo = *in.CompanyInfo
	}
	return s
}

func (s *draftService) Create(ctx context.Context, websiteID string, in dto.DraftRequest) (*dto.Campaign, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("campaigns"), logger.Op("CreateDraft"), logger.WebsiteID(websiteID))

	c, err := campaign.Compose(apply(campaign.Submission{}, in))
	if err != nil {
		return nil, err
	}
	if err := checkSMTP(ctx, s.deps.SMTPConfigs, websiteID, c.SMTPConfigID); err != nil {
		return nil, err
	}
	c.WebsiteID = websiteID
	c.Status = repository.CampaignDraft

	saved, err := s.deps.Campaigns.Create(ctx, c)
	if err != nil {
		log.Error("draft create failed", logger.Err(err))
		return nil, err
	}
	out := ToDTO(saved)
	return &out, nil
}

func (s *draftService) Update(ctx context.Context, websiteID, campaignID string, in dto.DraftRequest) (*dto.Campaign, error) {
	cur, err := s.deps.Campaigns.Get(ctx, websiteID, campaignID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if cur.Status != repository.CampaignDraft {
		return nil, ErrLocked
	}

	c, err := campaign.Compose(apply(campaign.FromCampaign(*cur), in))
	if err != nil {
		return nil, err
	}
	if err := checkSMTP(ctx, s.deps.SMTPConfigs, websiteID, c.SMTPConfigID); err != nil {
		return nil, err
	}
	c.ID = cur.ID
	c.WebsiteID = websiteID
	c.Status = repository.CampaignDraft

	saved, err := s.deps.Campaigns.UpdateDraft(ctx, c)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	out := ToDTO(saved)
	return &out, nil
}
