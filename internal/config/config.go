package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
		// BaseURL público de la API (links de verificación y unsubscribe).
		BaseURL string `yaml:"base_url"`
		// FrontendURL a donde redirigen las páginas públicas (opcional).
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		// Driver: postgres | memory (demo sin base, no persiste).
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Auth struct {
		// SessionSecret firma los JWT de sesión y de unsubscribe (HS256).
		SessionSecret string `yaml:"session_secret"`
		Session       struct {
			CookieName string `yaml:"cookie_name"`
			Domain     string `yaml:"domain"`
			SameSite   string `yaml:"samesite"`
			Secure     bool   `yaml:"secure"`
			TTL        string `yaml:"ttl"`
		} `yaml:"session"`
		Verify struct {
			TTL time.Duration `yaml:"ttl"`
		} `yaml:"verify"`
		PasswordMinLength int `yaml:"password_min_length"`
	} `yaml:"auth"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		SMTPTest struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"smtp_test"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`

	// SMTP del sistema (mails de verificación). Vacío => los links se loguean.
	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
		Timeout            string `yaml:"timeout"`
	} `yaml:"smtp"`

	Email struct {
		DebugEchoLinks bool `yaml:"debug_echo_links"`
	} `yaml:"email"`

	Security struct {
		SecretBoxMasterKey string `yaml:"secretbox_master_key"` // base64(32 bytes), cifra passwords SMTP
	} `yaml:"security"`

	Uploads struct {
		MaxCSVBytes        int64 `yaml:"max_csv_bytes"`
		MaxAttachmentBytes int64 `yaml:"max_attachment_bytes"`
		MaxAttachments     int   `yaml:"max_attachments"`
	} `yaml:"uploads"`

	Queue struct {
		Kind string `yaml:"kind"` // memory | amqp
		AMQP struct {
			URL        string `yaml:"url"`
			Exchange   string `yaml:"exchange"`
			Queue      string `yaml:"queue"`
			RoutingKey string `yaml:"routing_key"`
			Prefetch   int    `yaml:"prefetch"`
		} `yaml:"amqp"`
		Memory struct {
			Buffer int `yaml:"buffer"`
		} `yaml:"memory"`
	} `yaml:"queue"`

	Delivery struct {
		Concurrency int    `yaml:"concurrency"`
		SendTimeout string `yaml:"send_timeout"`
		// Consumer: si false, el proceso HTTP no consume la cola (usar `hellomail worker`).
		Consumer bool `yaml:"consumer"`
	} `yaml:"delivery"`

	Scheduler struct {
		Enabled   bool   `yaml:"enabled"`
		Interval  string `yaml:"interval"`
		BatchSize int    `yaml:"batch_size"`
		// SendingLease: una campaña en sending sin heartbeat por más de esto se re-despacha.
		SendingLease string `yaml:"sending_lease"`
	} `yaml:"scheduler"`
}

// Default retorna una configuración con todos los defaults aplicados.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.applyEnvOverrides()
	return &c
}

// Load lee el YAML, aplica defaults y overrides por env y valida.
// path vacío o inexistente (ErrNotExist) => sólo defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.validateDurations(); err != nil {
		return nil, err
	}

	// Guardia dura: en prod NUNCA exponemos los links por headers.
	if strings.EqualFold(c.App.Env, "prod") {
		c.Email.DebugEchoLinks = false
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "30s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "60s"
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = "http://localhost" + c.Server.Addr
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 20
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "hellomail:"
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "hm_session"
	}
	if c.Auth.Session.SameSite == "" {
		c.Auth.Session.SameSite = "Lax"
	}
	if c.Auth.Session.TTL == "" {
		c.Auth.Session.TTL = "24h"
	}
	if c.Auth.Verify.TTL == 0 {
		c.Auth.Verify.TTL = 48 * time.Hour
	}
	if c.Auth.PasswordMinLength == 0 {
		c.Auth.PasswordMinLength = 8
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.SMTPTest.Limit == 0 {
		c.Rate.SMTPTest.Limit = 5
	}
	if c.Rate.SMTPTest.Window == "" {
		c.Rate.SMTPTest.Window = "1m"
	}
	if c.SMTP.From == "" {
		c.SMTP.From = "no-reply@hellomail.local"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Timeout == "" {
		c.SMTP.Timeout = "15s"
	}
	if c.Uploads.MaxCSVBytes == 0 {
		c.Uploads.MaxCSVBytes = 10 << 20
	}
	if c.Uploads.MaxAttachmentBytes == 0 {
		c.Uploads.MaxAttachmentBytes = 20 << 20
	}
	if c.Uploads.MaxAttachments == 0 {
		c.Uploads.MaxAttachments = 10
	}
	if c.Queue.Kind == "" {
		c.Queue.Kind = "memory"
	}
	if c.Queue.AMQP.Exchange == "" {
		c.Queue.AMQP.Exchange = "hellomail"
	}
	if c.Queue.AMQP.Queue == "" {
		c.Queue.AMQP.Queue = "hellomail.campaign.dispatch"
	}
	if c.Queue.AMQP.RoutingKey == "" {
		c.Queue.AMQP.RoutingKey = "campaign.dispatch"
	}
	if c.Queue.AMQP.Prefetch == 0 {
		c.Queue.AMQP.Prefetch = 4
	}
	if c.Queue.Memory.Buffer == 0 {
		c.Queue.Memory.Buffer = 64
	}
	if c.Delivery.Concurrency == 0 {
		c.Delivery.Concurrency = 4
	}
	if c.Delivery.SendTimeout == "" {
		c.Delivery.SendTimeout = "30s"
	}
	if c.Scheduler.Interval == "" {
		c.Scheduler.Interval = "30s"
	}
	if c.Scheduler.BatchSize == 0 {
		c.Scheduler.BatchSize = 20
	}
	if c.Scheduler.SendingLease == "" {
		c.Scheduler.SendingLease = "15m"
	}
}

func (c *Config) validateDurations() error {
	for name, v := range map[string]string{
		"server.read_timeout":               c.Server.ReadTimeout,
		"server.write_timeout":              c.Server.WriteTimeout,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"cache.memory.default_ttl":          c.Cache.Memory.DefaultTTL,
		"auth.session.ttl":                  c.Auth.Session.TTL,
		"rate.window":                       c.Rate.Window,
		"rate.login.window":                 c.Rate.Login.Window,
		"rate.smtp_test.window":             c.Rate.SMTPTest.Window,
		"smtp.timeout":                      c.SMTP.Timeout,
		"delivery.send_timeout":             c.Delivery.SendTimeout,
		"scheduler.interval":                c.Scheduler.Interval,
		"scheduler.sending_lease":           c.Scheduler.SendingLease,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

// Validate reporta secretos faltantes. Lo llaman los entrypoints que los necesitan.
func (c *Config) Validate() error {
	var missing []string
	if c.Storage.Driver != "postgres" && c.Storage.Driver != "memory" {
		missing = append(missing, "storage.driver (postgres | memory)")
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		missing = append(missing, "storage.dsn (DATABASE_URL)")
	}
	if len(c.Auth.SessionSecret) < 32 {
		missing = append(missing, "auth.session_secret (SESSION_SECRET, min 32 chars)")
	}
	if strings.TrimSpace(c.Security.SecretBoxMasterKey) == "" {
		missing = append(missing, "security.secretbox_master_key (SECRETBOX_MASTER_KEY)")
	}
	if c.Queue.Kind == "amqp" && strings.TrimSpace(c.Queue.AMQP.URL) == "" {
		missing = append(missing, "queue.amqp.url (AMQP_URL)")
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		missing = append(missing, "cache.redis.addr (REDIS_ADDR)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing or invalid: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Dur parsea una duración ya validada por Load; fallback si está vacía o rota.
func Dur(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return fallback
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("APP_BASE_URL"); ok {
		c.App.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.App.FrontendURL = strings.TrimRight(v, "/")
	}

	// SERVER
	if v, ok := getEnvStr("HTTP_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// AUTH
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Auth.SessionSecret = v
	}
	if v, ok := getEnvStr("AUTH_SESSION_COOKIE_NAME"); ok {
		c.Auth.Session.CookieName = v
	}
	if v, ok := getEnvStr("AUTH_SESSION_DOMAIN"); ok {
		c.Auth.Session.Domain = v
	}
	if v, ok := getEnvBool("AUTH_SESSION_SECURE"); ok {
		c.Auth.Session.Secure = v
	}
	if v, ok := getEnvStr("AUTH_SESSION_TTL"); ok {
		c.Auth.Session.TTL = v
	}
	if v, ok := getEnvDur("AUTH_VERIFY_TTL"); ok {
		c.Auth.Verify.TTL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}

	// EMAIL
	if v, ok := getEnvBool("EMAIL_DEBUG_LINKS"); ok {
		c.Email.DebugEchoLinks = v
	}

	// SECURITY
	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}

	// QUEUE
	if v, ok := getEnvStr("QUEUE_KIND"); ok {
		c.Queue.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("AMQP_URL"); ok {
		c.Queue.AMQP.URL = v
	}

	// DELIVERY / SCHEDULER
	if v, ok := getEnvInt("DELIVERY_CONCURRENCY"); ok {
		c.Delivery.Concurrency = v
	}
	if v, ok := getEnvBool("DELIVERY_CONSUMER"); ok {
		c.Delivery.Consumer = v
	}
	if v, ok := getEnvBool("SCHEDULER_ENABLED"); ok {
		c.Scheduler.Enabled = v
	}
	if v, ok := getEnvStr("SCHEDULER_INTERVAL"); ok {
		c.Scheduler.Interval = v
	}
	if v, ok := getEnvStr("SCHEDULER_SENDING_LEASE"); ok {
		c.Scheduler.SendingLease = v
	}
}
