package campaigns

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/campaigns"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

type SendController struct {
	service   svc.SendService
	maxUpload int64
}

func NewSendController(service svc.SendService, maxUpload int64) *SendController {
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &SendController{service: service, maxUpload: maxUpload}
}

// decodeSend lee el form multipart. Las listas aceptan JSON o CSV; recipients,
// social_media y company_info vienen como JSON string.
func decodeSend(r *http.Request) (dto.SendRequest, error) {
	req := dto.SendRequest{
		CampaignID:    strings.TrimSpace(r.FormValue("campaign_id")),
		Subject:       r.FormValue("subject"),
		Body:          r.FormValue("body"),
		FromName:      r.FormValue("from_name"),
		FromEmail:     r.FormValue("from_email"),
		ReplyTo:       r.FormValue("reply_to"),
		SMTPConfigID:  strings.TrimSpace(r.FormValue("smtp_config_id")),
		SendType:      strings.TrimSpace(r.FormValue("send_type")),
		ScheduledAt:   strings.TrimSpace(r.FormValue("scheduled_at")),
		Timezone:      strings.TrimSpace(r.FormValue("timezone")),
		RecurringRule: strings.TrimSpace(r.FormValue("recurring_rule")),
	}

	var err error
	if req.CC, err = helpers.FormList(r, "cc"); err != nil {
		return req, err
	}
	if req.BCC, err = helpers.FormList(r, "bcc"); err != nil {
		return req, err
	}
	if req.Tags, err = helpers.FormList(r, "tags"); err != nil {
		return req, err
	}
	if req.FooterLocations, err = helpers.FormList(r, "footer_locations"); err != nil {
		return req, err
	}
	if err := helpers.FormJSON(r, "recipients", &req.Recipients); err != nil {
		return req, err
	}
	if err := helpers.FormJSON(r, "social_media", &req.SocialMedia); err != nil {
		return req, err
	}
	if err := helpers.FormJSON(r, "company_info", &req.CompanyInfo); err != nil {
		return req, err
	}

	files, err := helpers.ReadFiles(r, "attachments")
	if err != nil {
		return req, err
	}
	for _, f := range files {
		req.Attachments = append(req.Attachments, dto.Attachment{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data})
	}
	return req, nil
}

// Send maneja POST /emails/{websiteID}/send. 202 si quedó encolada, 201 si quedó programada.
func (c *SendController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	websiteID := mw.GetWebsiteID(ctx)
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SendController.Send"), logger.WebsiteID(websiteID))

	if !helpers.ParseMultipart(w, r, c.maxUpload) {
		return
	}
	req, err := decodeSend(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(err.Error()))
		return
	}

	out, err := c.service.Send(ctx, websiteID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info("campaign accepted", logger.CampaignID(out.CampaignID), logger.String("status", out.Status))

	status := http.StatusAccepted
	if out.Status == string(repository.CampaignScheduled) {
		status = http.StatusCreated
	}
	helpers.WriteJSON(w, status, out)
}
