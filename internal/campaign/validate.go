package campaign

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/validation"
)

var (
	// ErrScheduleRequired: send_type=scheduled sin scheduled_at.
	ErrScheduleRequired = errors.New("scheduled_at is required for scheduled campaigns")
	// ErrInvalidSchedule: fecha ilegible, en el pasado o timezone inexistente.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalid: cualquier otro campo mal formado o faltante.
	ErrInvalid = errors.New("invalid campaign")
)

// FieldError indica el campo que falló. Unwrap retorna uno de los sentinels de arriba.
type FieldError struct {
	Field  string
	Reason string
	kind   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }
func (e *FieldError) Unwrap() error { return e.kind }

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...), kind: ErrInvalid}
}

// Limits de envío.
type Limits struct {
	MaxAttachments     int
	MaxAttachmentBytes int64
	// ScheduleTolerance acepta fechas apenas vencidas (reloj del cliente atrasado).
	ScheduleTolerance time.Duration
}

// DefaultLimits: 10 adjuntos, 20MB en total, 1 minuto de tolerancia.
func DefaultLimits() Limits {
	return Limits{MaxAttachments: 10, MaxAttachmentBytes: 20 << 20, ScheduleTolerance: time.Minute}
}

// Submission es el payload crudo (form de envío o draft ya mergeado).
type Submission struct {
	Subject         string
	Body            string
	FromName        string
	FromEmail       string
	ReplyTo         string
	CC              []string
	BCC             []string
	Recipients      repository.RecipientSelector
	SMTPConfigID    string
	SendType        string
	ScheduledAt     string
	Timezone        string
	RecurringRule   string
	Tags            []string
	FooterLocations []string
	SocialMedia     map[string]string
	CompanyInfo     repository.CompanyInfo
}

// Schedule layouts aceptados además de RFC3339 (inputs datetime-local).
var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

// LoadLocation: "" => UTC.
func LoadLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || strings.EqualFold(tz, "utc") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &FieldError{Field: "timezone", Reason: fmt.Sprintf("unknown timezone %q", tz), kind: ErrInvalidSchedule}
	}
	return loc, nil
}

// ParseSchedule interpreta valores sin offset en la timezone de la campaña.
func ParseSchedule(value, tz string) (time.Time, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &FieldError{Field: "scheduled_at", Reason: fmt.Sprintf("cannot parse %q", value), kind: ErrInvalidSchedule}
}

// NormalizeRecurring: "" => none.
func NormalizeRecurring(s string) (repository.RecurringRule, error) {
	switch r := repository.RecurringRule(strings.ToLower(strings.TrimSpace(s))); r {
	case "", repository.RecurNone:
		return repository.RecurNone, nil
	case repository.RecurDaily, repository.RecurWeekly, repository.RecurMonthly:
		return r, nil
	}
	return "", invalid("recurring_rule", "must be one of none, daily, weekly, monthly")
}

// NormalizeFooter: vacío => bottom; dedup, orden top/bottom.
func NormalizeFooter(locs []string) ([]string, error) {
	var top, bottom bool
	for _, l := range locs {
		switch strings.ToLower(strings.TrimSpace(l)) {
		case "top":
			top = true
		case "bottom":
			bottom = true
		case "":
		default:
			return nil, invalid("footer_locations", "unknown location %q", l)
		}
	}
	out := []string{}
	if top {
		out = append(out, "top")
	}
	if bottom || !top {
		out = append(out, "bottom")
	}
	return out, nil
}

func normalizeAddresses(field string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, a := range validation.SplitList(raw) {
			e, ok := validation.NormalizeEmail(a)
			if !ok {
				return nil, invalid(field, "invalid address %q", a)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// Compose valida la forma de cada campo presente y arma la campaña normalizada.
// No exige completitud: sirve para drafts y como primer paso del envío.
func Compose(s Submission) (repository.Campaign, error) {
	c := repository.Campaign{
		Subject:     strings.TrimSpace(s.Subject),
		Body:        s.Body,
		FromName:    strings.TrimSpace(s.FromName),
		Recipients:  s.Recipients,
		Tags:        cleanTags(s.Tags),
		SocialMedia: map[string]string{},
		CompanyInfo: s.CompanyInfo,
		Status:      repository.CampaignDraft,
	}

	if v := strings.TrimSpace(s.FromEmail); v != "" {
		e, ok := validation.NormalizeEmail(v)
		if !ok {
			return c, invalid("from_email", "invalid address %q", v)
		}
		c.FromEmail = e
	}
	if v := strings.TrimSpace(s.ReplyTo); v != "" {
		e, ok := validation.NormalizeEmail(v)
		if !ok {
			return c, invalid("reply_to", "invalid address %q", v)
		}
		c.ReplyTo = e
	}
	var err error
	if c.CC, err = normalizeAddresses("cc", s.CC); err != nil {
		return c, err
	}
	if c.BCC, err = normalizeAddresses("bcc", s.BCC); err != nil {
		return c, err
	}

	if id := strings.TrimSpace(s.SMTPConfigID); id != "" {
		c.SMTPConfigID = &id
	}

	switch st := repository.SendType(strings.ToLower(strings.TrimSpace(s.SendType))); st {
	case "", repository.SendImmediate:
		c.SendType = repository.SendImmediate
	case repository.SendScheduled:
		c.SendType = st
	default:
		return c, invalid("send_type", "must be immediate or scheduled")
	}

	loc, err := LoadLocation(s.Timezone)
	if err != nil {
		return c, err
	}
	c.Timezone = loc.String()

	if strings.TrimSpace(s.ScheduledAt) != "" {
		t, err := ParseSchedule(s.ScheduledAt, c.Timezone)
		if err != nil {
			return c, err
		}
		c.ScheduledAt = &t
	}

	if c.RecurringRule, err = NormalizeRecurring(s.RecurringRule); err != nil {
		return c, err
	}
	if c.FooterLocations, err = NormalizeFooter(s.FooterLocations); err != nil {
		return c, err
	}
	for network, url := range s.SocialMedia {
		network = strings.ToLower(strings.TrimSpace(network))
		url = strings.TrimSpace(url)
		if network == "" || url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return c, invalid("social_media", "%s must be an http(s) URL", network)
		}
		c.SocialMedia[network] = url
	}
	if v := strings.TrimSpace(c.CompanyInfo.Email); v != "" && !validation.ValidEmail(v) {
		return c, invalid("company_info.email", "invalid address %q", v)
	}
	return c, nil
}

// Ready verifica que una campaña compuesta se pueda enviar o programar.
// El chequeo de scheduled_at va primero: es el error que el usuario ve seguido.
func Ready(c repository.Campaign, now time.Time, lim Limits) error {
	if c.SendType == repository.SendScheduled {
		if c.ScheduledAt == nil {
			return &FieldError{Field: "scheduled_at", Reason: "required when send_type is scheduled", kind: ErrScheduleRequired}
		}
		if c.ScheduledAt.Before(now.Add(-lim.ScheduleTolerance)) {
			return &FieldError{Field: "scheduled_at", Reason: "must be in the future", kind: ErrInvalidSchedule}
		}
	}
	if c.RecurringRule.Recurring() && c.SendType != repository.SendScheduled {
		return invalid("recurring_rule", "recurring campaigns must be scheduled")
	}
	switch {
	case c.Subject == "":
		return invalid("subject", "required")
	case strings.TrimSpace(c.Body) == "":
		return invalid("body", "required")
	case c.FromEmail == "":
		return invalid("from_email", "required")
	case c.Recipients.Empty():
		return invalid("recipients", "select at least one recipient")
	}
	if lim.MaxAttachments > 0 && len(c.Attachments) > lim.MaxAttachments {
		return invalid("attachments", "at most %d files", lim.MaxAttachments)
	}
	var total int64
	for _, a := range c.Attachments {
		total += a.Size
	}
	if lim.MaxAttachmentBytes > 0 && total > lim.MaxAttachmentBytes {
		return invalid("attachments", "total size exceeds %d bytes", lim.MaxAttachmentBytes)
	}
	return nil
}

// FromCampaign es la inversa de Compose (para mergear un PATCH sobre un draft).
func FromCampaign(c repository.Campaign) Submission {
	s := Submission{
		Subject:         c.Subject,
		Body:            c.Body,
		FromName:        c.FromName,
		FromEmail:       c.FromEmail,
		ReplyTo:         c.ReplyTo,
		CC:              c.CC,
		BCC:             c.BCC,
		Recipients:      c.Recipients,
		SendType:        string(c.SendType),
		Timezone:        c.Timezone,
		RecurringRule:   string(c.RecurringRule),
		Tags:            c.Tags,
		FooterLocations: c.FooterLocations,
		SocialMedia:     c.SocialMedia,
		CompanyInfo:     c.CompanyInfo,
	}
	if c.SMTPConfigID != nil {
		s.SMTPConfigID = *c.SMTPConfigID
	}
	if c.ScheduledAt != nil {
		s.ScheduledAt = c.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return s
}

func cleanTags(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

// Validate es el chequeo completo de un envío: Compose + Ready.
// Un scheduled sin fecha se rechaza antes de mirar cualquier otro campo.
func Validate(s Submission, now time.Time, lim Limits) (repository.Campaign, error) {
	if strings.EqualFold(strings.TrimSpace(s.SendType), string(repository.SendScheduled)) && strings.TrimSpace(s.ScheduledAt) == "" {
		return repository.Campaign{}, &FieldError{Field: "scheduled_at", Reason: "required when send_type is scheduled", kind: ErrScheduleRequired}
	}
	c, err := Compose(s)
	if err != nil {
		return c, err
	}
	return c, Ready(c, now, lim)
}
