package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// =================================================================================
// SMTP CONFIGS
// =================================================================================

type SMTPRepo struct{ s *Store }

func (r *SMTPRepo) List(_ context.Context, websiteID string) ([]repository.SMTPConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.SMTPConfig{}
	for _, c := range r.s.smtp {
		if c.WebsiteID == websiteID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SMTPRepo) Get(_ context.Context, websiteID, configID string) (*repository.SMTPConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.smtp[configID]
	if !ok || c.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *SMTPRepo) GetDefault(_ context.Context, websiteID string) (*repository.SMTPConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.smtp {
		if c.WebsiteID == websiteID && c.IsDefault {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SMTPRepo) clearDefaultLocked(websiteID string) {
	for _, c := range r.s.smtp {
		if c.WebsiteID == websiteID {
			c.IsDefault = false
		}
	}
}

func (r *SMTPRepo) Create(_ context.Context, websiteID string, in repository.CreateSMTPConfigInput) (*repository.SMTPConfig, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.websites[websiteID]; !ok {
		return nil, repository.ErrInvalidInput
	}
	existing := 0
	for _, c := range r.s.smtp {
		if c.WebsiteID == websiteID {
			existing++
		}
	}
	isDefault := in.IsDefault || existing == 0
	if isDefault {
		r.clearDefaultLocked(websiteID)
	}
	c := &repository.SMTPConfig{
		ID:          newID(),
		WebsiteID:   websiteID,
		Name:        in.Name,
		Host:        in.Host,
		Port:        in.Port,
		Username:    in.Username,
		PasswordEnc: in.PasswordEnc,
		Secure:      in.Secure,
		IsDefault:   isDefault,
		CreatedAt:   r.s.now(),
	}
	r.s.smtp[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *SMTPRepo) SetDefault(_ context.Context, websiteID, configID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.smtp[configID]
	if !ok || c.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	r.clearDefaultLocked(websiteID)
	c.IsDefault = true
	return nil
}

// Delete promueve la config más antigua si se borró la default.
func (r *SMTPRepo) Delete(_ context.Context, websiteID, configID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.smtp[configID]
	if !ok || c.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	delete(r.s.smtp, configID)
	if !c.IsDefault {
		return nil
	}
	var oldest *repository.SMTPConfig
	for _, o := range r.s.smtp {
		if o.WebsiteID == websiteID && (oldest == nil || o.CreatedAt.Before(oldest.CreatedAt)) {
			oldest = o
		}
	}
	if oldest != nil {
		oldest.IsDefault = true
	}
	return nil
}

// =================================================================================
// CAMPAIGNS
// =================================================================================

type CampaignRepo struct{ s *Store }

func cloneCampaign(c *repository.Campaign, withData bool) repository.Campaign {
	cp := *c
	cp.CC = cloneStrings(c.CC)
	cp.BCC = cloneStrings(c.BCC)
	cp.Tags = cloneStrings(c.Tags)
	cp.FooterLocations = cloneStrings(c.FooterLocations)
	cp.Recipients.ContactIDs = cloneStrings(c.Recipients.ContactIDs)
	cp.Recipients.LabelIDs = cloneStrings(c.Recipients.LabelIDs)
	cp.SocialMedia = make(map[string]string, len(c.SocialMedia))
	for k, v := range c.SocialMedia {
		cp.SocialMedia[k] = v
	}
	cp.Attachments = make([]repository.Attachment, len(c.Attachments))
	for i, a := range c.Attachments {
		if !withData {
			a.Data = nil
		}
		cp.Attachments[i] = a
	}
	return cp
}

func (r *CampaignRepo) addAttachments(c *repository.Campaign, in []repository.Attachment) {
	for _, a := range in {
		a.ID = newID()
		a.CampaignID = c.ID
		if a.Size == 0 {
			a.Size = int64(len(a.Data))
		}
		c.Attachments = append(c.Attachments, a)
	}
	sort.SliceStable(c.Attachments, func(i, j int) bool { return c.Attachments[i].Filename < c.Attachments[j].Filename })
}

// checkSchedule replica el CHECK de la tabla: fuera de draft, scheduled exige fecha.
func checkSchedule(c repository.Campaign) error {
	if c.Status != repository.CampaignDraft && c.SendType == repository.SendScheduled && c.ScheduledAt == nil {
		return repository.ErrInvalidInput
	}
	return nil
}

func (r *CampaignRepo) Create(_ context.Context, c repository.Campaign) (*repository.Campaign, error) {
	if err := checkSchedule(c); err != nil {
		return nil, err
	}
	r.s.wlock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.websites[c.WebsiteID]; !ok {
		return nil, repository.ErrInvalidInput
	}
	now := r.s.now()
	row := cloneCampaign(&c, true)
	row.ID = newID()
	row.Attachments = nil
	row.CreatedAt, row.UpdatedAt = now, now
	r.addAttachments(&row, c.Attachments)
	r.s.campaigns[row.ID] = &row
	out := cloneCampaign(&row, false)
	return &out, nil
}

func (r *CampaignRepo) UpdateDraft(_ context.Context, c repository.Campaign) (*repository.Campaign, error) {
	if err := checkSchedule(c); err != nil {
		return nil, err
	}
	r.s.wlock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.campaigns[c.ID]
	if !ok || cur.WebsiteID != c.WebsiteID {
		return nil, repository.ErrNotFound
	}
	if cur.Status != repository.CampaignDraft {
		return nil, repository.ErrConflict
	}
	row := cloneCampaign(&c, true)
	row.Attachments = cur.Attachments
	row.CreatedAt = cur.CreatedAt
	row.LastSentAt = cur.LastSentAt
	row.UpdatedAt = r.s.now()
	r.addAttachments(&row, c.Attachments)
	r.s.campaigns[row.ID] = &row
	out := cloneCampaign(&row, false)
	return &out, nil
}

func (r *CampaignRepo) Get(_ context.Context, websiteID, campaignID string) (*repository.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.campaigns[campaignID]
	if !ok || c.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	out := cloneCampaign(c, false)
	return &out, nil
}

func (r *CampaignRepo) GetForDispatch(_ context.Context, campaignID string) (*repository.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.campaigns[campaignID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneCampaign(c, true)
	return &out, nil
}

func (r *CampaignRepo) List(_ context.Context, websiteID string, status repository.CampaignStatus) ([]repository.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.Campaign{}
	for _, c := range r.s.campaigns {
		if c.WebsiteID == websiteID && (status == "" || c.Status == status) {
			cp := cloneCampaign(c, false)
			cp.Attachments = nil
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CampaignRepo) Delete(_ context.Context, websiteID, campaignID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[campaignID]
	if !ok || c.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	if c.Status == repository.CampaignSending {
		return repository.ErrConflict
	}
	r.s.deleteCampaignLocked(campaignID)
	return nil
}

func (s *Store) deleteCampaignLocked(campaignID string) {
	delete(s.campaigns, campaignID)
	for id, rc := range s.recipients {
		if rc.CampaignID == campaignID {
			delete(s.recipients, id)
		}
	}
}

func (r *CampaignRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]string, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	due := []*repository.Campaign{}
	for _, c := range r.s.campaigns {
		if c.Status == repository.CampaignScheduled && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	ids := make([]string, 0, len(due))
	for _, c := range due {
		c.Status = repository.CampaignSending
		c.UpdatedAt = r.s.now()
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *CampaignRepo) Touch(_ context.Context, campaignID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[campaignID]; ok && c.Status == repository.CampaignSending {
		c.UpdatedAt = r.s.now()
	}
	return nil
}

func (r *CampaignRepo) ClaimStale(_ context.Context, before time.Time, limit int) ([]string, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	stale := []*repository.Campaign{}
	for _, c := range r.s.campaigns {
		if c.Status == repository.CampaignSending && c.UpdatedAt.Before(before) {
			stale = append(stale, c)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	ids := make([]string, 0, len(stale))
	for _, c := range stale {
		c.UpdatedAt = r.s.now()
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *CampaignRepo) Finish(_ context.Context, campaignID string, out repository.DispatchOutcome) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[campaignID]
	if !ok || c.Status != repository.CampaignSending {
		return repository.ErrConflict
	}
	c.Status = out.Status
	if !out.SentAt.IsZero() {
		sent := out.SentAt
		c.LastSentAt = &sent
	}
	if out.NextRunAt != nil {
		next := *out.NextRunAt
		c.ScheduledAt = &next
	}
	c.UpdatedAt = r.s.now()
	return nil
}

// =================================================================================
// RECIPIENTS
// =================================================================================

type RecipientRepo struct{ s *Store }

func (r *RecipientRepo) Prepare(_ context.Context, campaignID string, contacts []repository.Contact, resetSent bool) ([]repository.Recipient, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	byContact := map[string]*repository.Recipient{}
	for _, rc := range r.s.recipients {
		if rc.CampaignID == campaignID {
			byContact[rc.ContactID] = rc
		}
	}
	out := make([]repository.Recipient, 0, len(contacts))
	for _, ct := range contacts {
		rc, ok := byContact[ct.ID]
		if !ok {
			rc = &repository.Recipient{ID: newID(), CampaignID: campaignID, ContactID: ct.ID}
			r.s.recipients[rc.ID] = rc
		} else if rc.Status == repository.RecipientSent && !resetSent {
			continue
		}
		rc.Email = ct.Email
		rc.Status = repository.RecipientPending
		rc.Error = ""
		rc.SentAt = nil
		out = append(out, *rc)
	}
	return out, nil
}

func (r *RecipientRepo) MarkSent(_ context.Context, recipientID string, at time.Time) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.recipients[recipientID]
	if !ok {
		return repository.ErrNotFound
	}
	rc.Status = repository.RecipientSent
	rc.Error = ""
	rc.SentAt = &at
	return nil
}

func (r *RecipientRepo) MarkFailed(_ context.Context, recipientID, reason string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.recipients[recipientID]
	if !ok {
		return repository.ErrNotFound
	}
	rc.Status = repository.RecipientFailed
	rc.Error = reason
	return nil
}

func (r *RecipientRepo) List(_ context.Context, campaignID string) ([]repository.Recipient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.Recipient{}
	for _, rc := range r.s.recipients {
		if rc.CampaignID == campaignID {
			out = append(out, *rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *RecipientRepo) Counts(_ context.Context, campaignID string) (map[repository.RecipientStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[repository.RecipientStatus]int{}
	for _, rc := range r.s.recipients {
		if rc.CampaignID == campaignID {
			out[rc.Status]++
		}
	}
	return out, nil
}
