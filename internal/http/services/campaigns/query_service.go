package campaigns

import (
	"context"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// QueryService lista, detalla y borra campañas.
type QueryService interface {
	List(ctx context.Context, websiteID, status string) (*dto.ListResponse, error)
	Get(ctx context.Context, websiteID, campaignID string) (*dto.Detail, error)
	// Delete borra drafts y cancela programadas. ErrLocked mientras se envía.
	Delete(ctx context.Context, websiteID, campaignID string) error
}

type queryService struct{ deps Deps }

func NewQueryService(d Deps) QueryService { return &queryService{deps: d} }

func (s *queryService) List(ctx context.Context, websiteID, status string) (*dto.ListResponse, error) {
	rows, err := s.deps.Campaigns.List(ctx, websiteID, repository.CampaignStatus(strings.ToLower(strings.TrimSpace(status))))
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{Items: make([]dto.Campaign, 0, len(rows))}
	for i := range rows {
		out.Items = append(out.Items, ToDTO(&rows[i]))
	}
	return out, nil
}

func (s *queryService) Get(ctx context.Context, websiteID, campaignID string) (*dto.Detail, error) {
	c, err := s.deps.Campaigns.Get(ctx, websiteID, campaignID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	recs, err := s.deps.Recipients.List(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.deps.Recipients.Counts(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	out := &dto.Detail{
		Campaign:      ToDTO(c),
		RecipientList: make([]dto.Recipient, 0, len(recs)),
		Counts: map[string]int{
			string(repository.RecipientPending): counts[repository.RecipientPending],
			string(repository.RecipientSent):    counts[repository.RecipientSent],
			string(repository.RecipientFailed):  counts[repository.RecipientFailed],
		},
	}
	for _, r := range recs {
		out.RecipientList = append(out.RecipientList, dto.Recipient{
			RecipientID:     r.ID,
			ContactID:       r.ContactID,
			Email:           r.Email,
			RecipientStatus: string(r.Status),
			SentAt:          r.SentAt,
			Error:           r.Error,
		})
	}
	return out, nil
}

func (s *queryService) Delete(ctx context.Context, websiteID, campaignID string) error {
	if err := s.deps.Campaigns.Delete(ctx, websiteID, campaignID); err != nil {
		return mapRepoErr(err)
	}
	logger.From(ctx).Info("campaign deleted",
		logger.Layer("service"), logger.Component("campaigns"), logger.WebsiteID(websiteID), logger.CampaignID(campaignID))
	return nil
}
