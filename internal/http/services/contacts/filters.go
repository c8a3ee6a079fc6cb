package contacts

import (
	"context"
	"encoding/json"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// filterCache cachea FilterValues por website; cualquier escritura de contactos lo invalida.
type filterCache struct {
	deps Deps
}

func filterKey(websiteID string) string { return "contacts:filters:" + websiteID }

func (f *filterCache) Get(ctx context.Context, websiteID string) (*repository.ContactFilterValues, error) {
	if f.deps.Cache != nil {
		if raw, err := f.deps.Cache.Get(ctx, filterKey(websiteID)); err == nil {
			var v repository.ContactFilterValues
			if json.Unmarshal([]byte(raw), &v) == nil {
				return &v, nil
			}
		}
	}
	v, err := f.deps.Contacts.FilterValues(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if f.deps.Cache != nil {
		if b, err := json.Marshal(v); err == nil {
			if err := f.deps.Cache.Set(ctx, filterKey(websiteID), string(b), f.deps.CacheTTL); err != nil {
				logger.From(ctx).Debug("filter cache set failed", logger.Err(err))
			}
		}
	}
	return v, nil
}

func (f *filterCache) Invalidate(ctx context.Context, websiteID string) {
	if f.deps.Cache != nil {
		_ = f.deps.Cache.Delete(ctx, filterKey(websiteID))
	}
}
