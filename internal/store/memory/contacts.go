package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// =================================================================================
// LABELS
// =================================================================================

type LabelRepo struct{ s *Store }

func (r *LabelRepo) List(_ context.Context, websiteID string) ([]repository.Label, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.Label{}
	for _, l := range r.s.labels {
		if l.WebsiteID == websiteID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *LabelRepo) Get(_ context.Context, websiteID, labelID string) (*repository.Label, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LabelRepo) nameTaken(websiteID, name, exceptID string) bool {
	for _, l := range r.s.labels {
		if l.WebsiteID == websiteID && l.ID != exceptID && strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

func (r *LabelRepo) Create(_ context.Context, websiteID string, in repository.LabelInput) (*repository.Label, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.websites[websiteID]; !ok {
		return nil, repository.ErrInvalidInput
	}
	if r.nameTaken(websiteID, in.Name, "") {
		return nil, repository.ErrConflict
	}
	l := &repository.Label{ID: newID(), WebsiteID: websiteID, Name: in.Name, Color: in.Color, CreatedAt: r.s.now()}
	r.s.labels[l.ID] = l
	cp := *l
	return &cp, nil
}

func (r *LabelRepo) Update(_ context.Context, websiteID, labelID string, in repository.LabelInput) (*repository.Label, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	if r.nameTaken(websiteID, in.Name, labelID) {
		return nil, repository.ErrConflict
	}
	l.Name, l.Color = in.Name, in.Color
	cp := *l
	return &cp, nil
}

// Delete replica ON DELETE SET NULL en contacts.label_id.
func (r *LabelRepo) Delete(_ context.Context, websiteID, labelID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	delete(r.s.labels, labelID)
	for _, c := range r.s.contacts {
		if c.LabelID != nil && *c.LabelID == labelID {
			c.LabelID = nil
		}
	}
	return nil
}

// =================================================================================
// CONTACTS
// =================================================================================

type ContactRepo struct{ s *Store }

func cloneContact(c *repository.Contact) repository.Contact {
	cp := *c
	if c.LabelID != nil {
		id := *c.LabelID
		cp.LabelID = &id
	}
	return cp
}

func matches(c *repository.Contact, f repository.ContactFilter) bool {
	if f.Gender != "" && c.Gender != f.Gender {
		return false
	}
	if f.Country != "" && !strings.EqualFold(c.Country, f.Country) {
		return false
	}
	if f.Tag != "" && !strings.EqualFold(c.Tag, f.Tag) {
		return false
	}
	if f.LabelID != "" && (c.LabelID == nil || *c.LabelID != f.LabelID) {
		return false
	}
	if f.Unsubscribed != nil && c.Unsubscribed != *f.Unsubscribed {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(c.FirstName + "\x00" + c.LastName + "\x00" + c.Email)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func (r *ContactRepo) List(_ context.Context, websiteID string, f repository.ContactFilter) ([]repository.Contact, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := []repository.Contact{}
	for _, c := range r.s.contacts {
		if c.WebsiteID == websiteID && matches(c, f) {
			all = append(all, cloneContact(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < total {
		end = start + f.Limit
	}
	return all[start:end], total, nil
}

func (r *ContactRepo) Get(_ context.Context, websiteID, contactID string) (*repository.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[contactID]
	if !ok || c.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	cp := cloneContact(c)
	return &cp, nil
}

func (r *ContactRepo) emailTaken(websiteID, email, exceptID string) bool {
	for _, c := range r.s.contacts {
		if c.WebsiteID == websiteID && c.ID != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func applyInput(c *repository.Contact, in repository.ContactInput) {
	c.Prefix = in.Prefix
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Country = in.Country
	c.State = in.State
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Tag = in.Tag
	c.Gender = in.Gender
	c.LabelID = nil
	if in.LabelID != nil {
		id := *in.LabelID
		c.LabelID = &id
	}
}

// insertLocked asume el lock de escritura tomado.
func (r *ContactRepo) insertLocked(websiteID string, in repository.ContactInput) (*repository.Contact, error) {
	if _, ok := r.s.websites[websiteID]; !ok {
		return nil, repository.ErrInvalidInput
	}
	if r.emailTaken(websiteID, in.Email, "") {
		return nil, repository.ErrConflict
	}
	now := r.s.now()
	c := &repository.Contact{ID: newID(), WebsiteID: websiteID, CreatedAt: now, UpdatedAt: now}
	applyInput(c, in)
	r.s.contacts[c.ID] = c
	return c, nil
}

func (r *ContactRepo) Create(_ context.Context, websiteID string, in repository.ContactInput) (*repository.Contact, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, err := r.insertLocked(websiteID, in)
	if err != nil {
		return nil, err
	}
	cp := cloneContact(c)
	return &cp, nil
}

func (r *ContactRepo) Update(_ context.Context, websiteID, contactID string, in repository.ContactInput) (*repository.Contact, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[contactID]
	if !ok || c.WebsiteID != websiteID {
		return nil, repository.ErrNotFound
	}
	if r.emailTaken(websiteID, in.Email, contactID) {
		return nil, repository.ErrConflict
	}
	applyInput(c, in)
	c.UpdatedAt = r.s.now()
	cp := cloneContact(c)
	return &cp, nil
}

func (r *ContactRepo) Delete(_ context.Context, websiteID, contactID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[contactID]
	if !ok || c.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	delete(r.s.contacts, contactID)
	return nil
}

func (r *ContactRepo) FilterValues(_ context.Context, websiteID string) (*repository.ContactFilterValues, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	countries, tags, genders := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, c := range r.s.contacts {
		if c.WebsiteID != websiteID {
			continue
		}
		countries[c.Country] = true
		tags[c.Tag] = true
		genders[c.Gender] = true
	}
	return &repository.ContactFilterValues{
		Countries: sortedKeys(countries),
		Tags:      sortedKeys(tags),
		Genders:   sortedKeys(genders),
	}, nil
}

func sortedKeys(m map[string]bool) []string {
	out := []string{}
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (r *ContactRepo) ExistingEmails(_ context.Context, websiteID string, emails []string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[strings.ToLower(strings.TrimSpace(e))] = true
	}
	out := map[string]bool{}
	for _, c := range r.s.contacts {
		if e := strings.ToLower(c.Email); c.WebsiteID == websiteID && want[e] {
			out[e] = true
		}
	}
	return out, nil
}

func (r *ContactRepo) BulkInsert(_ context.Context, websiteID string, inputs []repository.ContactInput) (int, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	// todo o nada, como la transacción de pg
	if _, ok := r.s.websites[websiteID]; !ok {
		return 0, repository.ErrInvalidInput
	}
	n := 0
	for _, in := range inputs {
		if _, err := r.insertLocked(websiteID, in); err == nil {
			n++
		} else if err != repository.ErrConflict {
			return n, err
		}
	}
	return n, nil
}

func (r *ContactRepo) SetUnsubscribed(_ context.Context, websiteID, contactID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[contactID]
	if !ok || c.WebsiteID != websiteID {
		return repository.ErrNotFound
	}
	c.Unsubscribed = true
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *ContactRepo) Audience(_ context.Context, websiteID string, sel repository.RecipientSelector) ([]repository.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.Contact{}
	if sel.Empty() {
		return out, nil
	}
	ids := map[string]bool{}
	for _, id := range sel.ContactIDs {
		ids[id] = true
	}
	labels := map[string]bool{}
	for _, id := range sel.LabelIDs {
		labels[id] = true
	}

	candidates := []*repository.Contact{}
	for _, c := range r.s.contacts {
		if c.WebsiteID != websiteID || c.Unsubscribed {
			continue
		}
		if sel.All || ids[c.ID] || (c.LabelID != nil && labels[*c.LabelID]) {
			candidates = append(candidates, c)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })

	seen := map[string]bool{}
	for _, c := range candidates {
		e := strings.ToLower(c.Email)
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, cloneContact(c))
	}
	return out, nil
}
