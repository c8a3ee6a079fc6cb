package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	"github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// WebsiteOwners resuelve el dueño de un website.
type WebsiteOwners interface {
	Get(ctx context.Context, websiteID string) (*repository.Website, error)
}

// OwnershipCache cachea website => user_id para no pegarle a la base en cada request.
type OwnershipCache struct {
	Websites WebsiteOwners
	Cache    cache.Client
	TTL      time.Duration
}

func ownerKey(websiteID string) string { return "ws:owner:" + websiteID }

// Owner retorna el user_id dueño del website (ErrNotFound si no existe).
func (o *OwnershipCache) Owner(ctx context.Context, websiteID string) (string, error) {
	if o.Cache != nil {
		if v, err := o.Cache.Get(ctx, ownerKey(websiteID)); err == nil {
			return v, nil
		}
	}
	ws, err := o.Websites.Get(ctx, websiteID)
	if err != nil {
		return "", err
	}
	if o.Cache != nil {
		ttl := o.TTL
		if ttl <= 0 {
			ttl = 2 * time.Minute
		}
		_ = o.Cache.Set(ctx, ownerKey(websiteID), ws.UserID, ttl)
	}
	return ws.UserID, nil
}

// Invalidate se llama al borrar un website.
func (o *OwnershipCache) Invalidate(ctx context.Context, websiteID string) {
	if o != nil && o.Cache != nil {
		_ = o.Cache.Delete(ctx, ownerKey(websiteID))
	}
}

// WebsiteScope valida que {websiteID} pertenezca al usuario de la sesión.
// Debe ir después de RequireSession. Website ajeno o inexistente => 404 WEBSITE_NOT_FOUND.
func WebsiteScope(o *OwnershipCache) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wsID := chi.URLParam(r, "websiteID")
			userID := GetUserID(r.Context())
			if wsID == "" || userID == "" {
				errors.WriteError(w, errors.ErrWebsiteNotFound)
				return
			}

			owner, err := o.Owner(r.Context(), wsID)
			if err != nil {
				if repository.IsNotFound(err) {
					errors.WriteError(w, errors.ErrWebsiteNotFound)
					return
				}
				errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
				return
			}
			if owner != userID {
				errors.WriteError(w, errors.ErrWebsiteNotFound)
				return
			}

			ctx := WithWebsiteID(r.Context(), wsID)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.WebsiteID(wsID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
