package config

import (
	"strings"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

var config *Config

// Config holds every setting the binaries read. Only this struct must be used
// to hold configuration values, no direct access to env or any other config
// source should be made.
type Config struct {
	AppEnv  string `env:"APP_ENV,default=dev"`
	AppName string `env:"APP_NAME,default=portfolio_contact"`

	HttpListenAddr    string `env:"HTTP_LISTEN_ADDR"`
	Port              string `env:"PORT,default=3000"`
	StaticDir         string `env:"STATIC_DIR"`
	DocsEnabled       bool   `env:"DOCS_ENABLED"`
	CorsAllowOrigin   string `env:"CORS_ALLOW_ORIGIN,default=*"`
	TrustedProxyCount int    `env:"TRUSTED_PROXY_COUNT,default=0"`

	DBDriver        string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL     string `env:"DATABASE_URL"`
	DatabaseReadURL string `env:"DATABASE_READ_URL"`
	SQLitePath      string `env:"SQLITE_PATH,default=contacts.db"`
	DBDebug         bool   `env:"DB_DEBUG"`

	ContactNameMaxLen    int `env:"CONTACT_NAME_MAX_LEN,default=100"`
	ContactMessageMaxLen int `env:"CONTACT_MESSAGE_MAX_LEN,default=1000"`

	RateLimitMax     int           `env:"RATE_LIMIT_MAX,default=100"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW,default=15m"`
	RateLimitBackend string        `env:"RATE_LIMIT_BACKEND,default=memory"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=portfolio:"`

	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET"`
	AdminJWTTTL    time.Duration `env:"ADMIN_JWT_TTL,default=24h"`

	MetricsAddr   string `env:"METRICS_ADDR"`
	MetricsPath   string `env:"METRICS_PATH,default=/metrics"`
	PromNamespace string `env:"PROM_NAMESPACE,default=portfolio"`

	NotifyEnabled       bool          `env:"NOTIFY_ENABLED"`
	NotifyQueue         string        `env:"NOTIFY_QUEUE,default=contact:notifications"`
	NotifyConsumerGroup string        `env:"NOTIFY_CONSUMER_GROUP,default=notifier"`
	NotifyMaxRetries    int           `env:"NOTIFY_MAX_RETRIES,default=5"`
	NotifyPollInterval  time.Duration `env:"NOTIFY_POLL_INTERVAL,default=1s"`
	NotifyTo            string        `env:"NOTIFY_TO"`

	SmtpHost          string `env:"SMTP_HOST"`
	SmtpPort          int    `env:"SMTP_PORT,default=587"`
	SmtpUser          string `env:"SMTP_USER"`
	SmtpPass          string `env:"SMTP_PASS"`
	SmtpFrom          string `env:"SMTP_FROM"`
	SmtpSkipTLSVerify bool   `env:"SMTP_SKIP_TLS_VERIFY"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = c.Validate(); err != nil {
		return err
	}

	config = c
	return nil
}

// Set installs c as the global configuration. Tests use it instead of Load.
func Set(c *Config) {
	config = c
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Validate rejects combinations the binaries cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return errors.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}

	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if c.ContactNameMaxLen <= 0 || c.ContactMessageMaxLen <= 0 {
		return errors.New("contact length limits must be positive")
	}
	return nil
}

// ListenAddr prefers HTTP_LISTEN_ADDR and falls back to ":$PORT".
func (c *Config) ListenAddr() string {
	if c.HttpListenAddr != "" {
		return c.HttpListenAddr
	}
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DocsExposed reports whether /api-docs is served: always outside production,
// and in production only when DOCS_ENABLED is set.
func (c *Config) DocsExposed() bool {
	return !c.IsProduction() || c.DocsEnabled
}

// NotifyRecipients splits NOTIFY_TO on commas.
func (c *Config) NotifyRecipients() []string {
	var out []string
	for _, p := range strings.Split(c.NotifyTo, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
