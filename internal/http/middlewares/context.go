package middlewares

import "context"

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxUserKey      ctxKey = "user"
	ctxWebsiteKey   ctxKey = "website_id"
)

// SessionUser es el usuario autenticado por la cookie de sesión.
type SessionUser struct {
	ID    string
	Email string
}

// =================================================================================
// CONTEXT SETTERS
// =================================================================================

// WithUser inyecta el usuario de la sesión (también lo usan los tests de controllers).
func WithUser(ctx context.Context, u SessionUser) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// WithWebsiteID inyecta el website ya validado contra el usuario.
func WithWebsiteID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxWebsiteKey, id)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS
// =================================================================================

// GetUser retorna el usuario de la sesión y si existe.
func GetUser(ctx context.Context) (SessionUser, bool) {
	u, ok := ctx.Value(ctxUserKey).(SessionUser)
	return u, ok && u.ID != ""
}

// GetUserID retorna "" si no hay sesión.
func GetUserID(ctx context.Context) string {
	u, _ := GetUser(ctx)
	return u.ID
}

// GetWebsiteID retorna "" fuera de rutas con scope de website.
func GetWebsiteID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxWebsiteKey).(string); ok {
		return s
	}
	return ""
}

// GetRequestID retorna "" si WithRequestID no corrió.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
