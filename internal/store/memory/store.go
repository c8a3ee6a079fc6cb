// Package memory implementa los repositorios de dominio en memoria.
//
// Respeta los mismos contratos que store/pg (scoping por website, ErrNotFound,
// ErrConflict en duplicados) y lo usan los tests de services/controllers y el
// modo demo sin base (`storage.driver: memory`). No persiste nada.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// Store comparte un único lock entre repositorios: los joins (verificación ⋈ usuario,
// website ⋈ contactos) se resuelven sin orden de locking.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         map[string]*repository.User
	verifications map[string]*verification
	websites      map[string]*repository.Website
	labels        map[string]*repository.Label
	contacts      map[string]*repository.Contact
	smtp          map[string]*repository.SMTPConfig
	campaigns     map[string]*repository.Campaign
	recipients    map[string]*repository.Recipient

	Users         *UserRepo
	Verifications *VerificationRepo
	Websites      *WebsiteRepo
	Labels        *LabelRepo
	Contacts      *ContactRepo
	SMTPConfigs   *SMTPRepo
	Campaigns     *CampaignRepo
	Recipients    *RecipientRepo

	// Writes cuenta operaciones de escritura (los tests verifican caminos sin escrituras).
	writes int
}

type verification struct {
	tokenHash string
	userID    string
	expiresAt time.Time
	createdAt time.Time
}

func New() *Store {
	s := &Store{
		now:           time.Now,
		users:         map[string]*repository.User{},
		verifications: map[string]*verification{},
		websites:      map[string]*repository.Website{},
		labels:        map[string]*repository.Label{},
		contacts:      map[string]*repository.Contact{},
		smtp:          map[string]*repository.SMTPConfig{},
		campaigns:     map[string]*repository.Campaign{},
		recipients:    map[string]*repository.Recipient{},
	}
	s.Users = &UserRepo{s}
	s.Verifications = &VerificationRepo{s}
	s.Websites = &WebsiteRepo{s}
	s.Labels = &LabelRepo{s}
	s.Contacts = &ContactRepo{s}
	s.SMTPConfigs = &SMTPRepo{s}
	s.Campaigns = &CampaignRepo{s}
	s.Recipients = &RecipientRepo{s}
	return s
}

// SetClock fija el reloj de created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Writes retorna cuántas escrituras se hicieron desde New.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// wlock toma el lock de escritura y cuenta la operación.
func (s *Store) wlock() {
	s.mu.Lock()
	s.writes++
}

func newID() string { return uuid.NewString() }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// =================================================================================
// USERS
// =================================================================================

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, u := range r.s.users {
		if u.Email == email {
			return nil, repository.ErrConflict
		}
	}
	u := &repository.User{
		ID:           newID(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		CreatedAt:    r.s.now(),
	}
	r.s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) GetByID(_ context.Context, userID string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// =================================================================================
// EMAIL VERIFICATIONS
// =================================================================================

type VerificationRepo struct{ s *Store }

func (r *VerificationRepo) Replace(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrInvalidInput
	}
	for h, v := range r.s.verifications {
		if v.userID == userID {
			delete(r.s.verifications, h)
		}
	}
	r.s.verifications[tokenHash] = &verification{
		tokenHash: tokenHash,
		userID:    userID,
		expiresAt: expiresAt,
		createdAt: r.s.now(),
	}
	return nil
}

func (r *VerificationRepo) Lookup(_ context.Context, tokenHash string) (*repository.PendingVerification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.verifications[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u, ok := r.s.users[v.userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.PendingVerification{
		TokenHash:  v.tokenHash,
		UserID:     u.ID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		ExpiresAt:  v.expiresAt,
		CreatedAt:  v.createdAt,
	}, nil
}

func (r *VerificationRepo) Consume(_ context.Context, userID, _ string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if u.IsVerified {
		return false, nil
	}
	r.s.writes++
	u.IsVerified = true
	return true, nil
}

func (r *VerificationRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	n := 0
	for h, v := range r.s.verifications {
		if v.expiresAt.Before(now) {
			delete(r.s.verifications, h)
			n++
		}
	}
	return n, nil
}

// =================================================================================
// WEBSITES
// =================================================================================

type WebsiteRepo struct{ s *Store }

func (r *WebsiteRepo) Create(_ context.Context, in repository.CreateWebsiteInput) (*repository.Website, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[in.UserID]; !ok {
		return nil, repository.ErrInvalidInput
	}
	now := r.s.now()
	w := &repository.Website{
		ID:          newID(),
		UserID:      in.UserID,
		CompanyName: in.CompanyName,
		Domain:      in.Domain,
		Field:       in.Field,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.websites[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *WebsiteRepo) ListByUser(_ context.Context, userID string) ([]repository.Website, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []repository.Website{}
	for _, w := range r.s.websites {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *WebsiteRepo) Get(_ context.Context, websiteID string) (*repository.Website, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.websites[websiteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *WebsiteRepo) GetForUser(ctx context.Context, websiteID, userID string) (*repository.Website, error) {
	w, err := r.Get(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (r *WebsiteRepo) Update(_ context.Context, websiteID, userID string, in repository.UpdateWebsiteInput) (*repository.Website, error) {
	r.s.wlock()
	defer r.s.mu.Unlock()
	w, ok := r.s.websites[websiteID]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if in.CompanyName != nil {
		w.CompanyName = *in.CompanyName
	}
	if in.Domain != nil {
		w.Domain = *in.Domain
	}
	if in.Field != nil {
		w.Field = *in.Field
	}
	w.UpdatedAt = r.s.now()
	cp := *w
	return &cp, nil
}

// Delete replica el ON DELETE CASCADE de la base.
func (r *WebsiteRepo) Delete(_ context.Context, websiteID, userID string) error {
	r.s.wlock()
	defer r.s.mu.Unlock()
	w, ok := r.s.websites[websiteID]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.websites, websiteID)
	for id, c := range r.s.contacts {
		if c.WebsiteID == websiteID {
			delete(r.s.contacts, id)
		}
	}
	for id, l := range r.s.labels {
		if l.WebsiteID == websiteID {
			delete(r.s.labels, id)
		}
	}
	for id, c := range r.s.smtp {
		if c.WebsiteID == websiteID {
			delete(r.s.smtp, id)
		}
	}
	for id, c := range r.s.campaigns {
		if c.WebsiteID == websiteID {
			r.s.deleteCampaignLocked(id)
		}
	}
	return nil
}

var (
	_ repository.UserRepository              = (*UserRepo)(nil)
	_ repository.EmailVerificationRepository = (*VerificationRepo)(nil)
	_ repository.WebsiteRepository           = (*WebsiteRepo)(nil)
	_ repository.LabelRepository             = (*LabelRepo)(nil)
	_ repository.ContactRepository           = (*ContactRepo)(nil)
	_ repository.SMTPConfigRepository        = (*SMTPRepo)(nil)
	_ repository.CampaignRepository          = (*CampaignRepo)(nil)
	_ repository.RecipientRepository         = (*RecipientRepo)(nil)
)
