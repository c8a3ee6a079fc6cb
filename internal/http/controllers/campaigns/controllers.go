// Package campaigns contiene los controllers de /emails/{websiteID}.
package campaigns

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/hellomail/internal/campaign"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
)

type Controllers struct {
	Drafts    *DraftController
	Send      *SendController
	Campaigns *CampaignsController
}

// NewControllers arma los controllers. maxUpload es el tope del form de envío (adjuntos incluidos).
func NewControllers(s svc.Services, maxUpload int64) *Controllers {
	return &Controllers{
		Drafts:    NewDraftController(s.Drafts),
		Send:      NewSendController(s.Send, maxUpload),
		Campaigns: NewCampaignsController(s.Campaigns),
	}
}

func writeError(w http.ResponseWriter, err error) {
	var fe *campaign.FieldError
	switch {
	case errors.Is(err, campaign.ErrScheduleRequired):
		httperrors.WriteError(w, httperrors.ErrScheduleRequired)
	case errors.Is(err, campaign.ErrInvalidSchedule):
		detail := err.Error()
		if errors.As(err, &fe) {
			detail = fe.Reason
		}
		httperrors.WriteError(w, httperrors.ErrInvalidSchedule.WithDetail(detail))
	case errors.As(err, &fe):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(fe.Error()))
	case errors.Is(err, campaign.ErrInvalid):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(err.Error()))
	case errors.Is(err, svc.ErrLocked):
		httperrors.WriteError(w, httperrors.ErrCampaignLocked)
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrCampaignNotFound)
	case errors.Is(err, svc.ErrSMTPConfigNotFound):
		httperrors.WriteError(w, httperrors.ErrSMTPConfigNotFound)
	case errors.Is(err, svc.ErrQueueUnavailable):
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("campaign could not be queued, it was marked as failed").WithCause(err))
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
