package campaigns

import (
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/campaign"
)

func ToDTO(c *repository.Campaign) dto.Campaign {
	out := dto.Campaign{
		CampaignID:      c.ID,
		Subject:         c.Subject,
		Body:            c.Body,
		FromName:        c.FromName,
		FromEmail:       c.FromEmail,
		ReplyTo:         c.ReplyTo,
		CC:              nonNil(c.CC),
		BCC:             nonNil(c.BCC),
		Recipients:      c.Recipients,
		SMTPConfigID:    c.SMTPConfigID,
		SendType:        string(c.SendType),
		ScheduledAt:     c.ScheduledAt,
		Timezone:        c.Timezone,
		RecurringRule:   string(c.RecurringRule),
		Tags:            nonNil(c.Tags),
		FooterLocations: nonNil(c.FooterLocations),
		SocialMedia:     c.SocialMedia,
		CompanyInfo:     c.CompanyInfo,
		Status:          string(c.Status),
		LastSentAt:      c.LastSentAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if out.SocialMedia == nil {
		out.SocialMedia = map[string]string{}
	}
	for _, a := range c.Attachments {
		out.Attachments = append(out.Attachments, dto.AttachmentInfo{
			AttachmentID: a.ID,
			Filename:     a.Filename,
			ContentType:  a.ContentType,
			Size:         a.Size,
		})
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func attachments(in []dto.Attachment) []repository.Attachment {
	out := make([]repository.Attachment, 0, len(in))
	for _, a := range in {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		out = append(out, repository.Attachment{
			Filename:    a.Filename,
			ContentType: ct,
			Size:        int64(len(a.Data)),
			Data:        a.Data,
		})
	}
	return out
}
