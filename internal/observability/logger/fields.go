package logger

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Bytes crea un campo para el bytes escritos en la respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// Duration crea un campo para el duración.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para el duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// ClientIP crea un campo para el IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// UserID crea un campo para el ID del usuario autenticado.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// WebsiteID crea un campo para el website (tenant) del request.
func WebsiteID(v string) zap.Field {
	return zap.String("website_id", v)
}

// CampaignID crea un campo para el campaña.
func CampaignID(v string) zap.Field {
	return zap.String("campaign_id", v)
}

// ContactID crea un campo para el contacto.
func ContactID(v string) zap.Field {
	return zap.String("contact_id", v)
}

// Email crea un campo para el email. Usar con cuidado en prod (PII).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// SMTPHost identifica el servidor SMTP sin credenciales.
func SMTPHost(host string, port int) zap.Field {
	return zap.String("smtp", host+":"+strconv.Itoa(port))
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente (scheduler, worker, ...).
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para el operación en curso.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para el capa (controller, service, repo).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para el error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para el contador genérico.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// String, Int, Bool y Any son aliases para campos ad-hoc.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
