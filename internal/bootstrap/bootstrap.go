// Package bootstrap builds the shared dependencies of the binaries from the
// loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/queue"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/validation"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/db"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
	"github.com/google/uuid"
)

const sweepInterval = time.Minute

// EnvPath returns the value of a --env=path argument when the file exists.
func EnvPath(args []string) string {
	for _, v := range args {
		if path, ok := strings.CutPrefix(v, "--env="); ok {
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "path", path, "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}

// DBConfigs maps the configuration to read and write store settings.
func DBConfigs(c *config.Config) (read, write db.Config) {
	switch c.DBDriver {
	case config.DriverSQLite:
		write = db.Config{Driver: db.DriverSQLite, DSN: c.SQLitePath}
		return db.Config{}, write
	default:
		write = db.Config{Driver: db.DriverPostgres, DSN: c.DatabaseURL, RequireSSL: c.IsProduction()}
		read = db.Config{Driver: db.DriverPostgres, DSN: c.DatabaseReadURL, RequireSSL: c.IsProduction()}
		return read, write
	}
}

// OpenDB connects to the store and checks it answers. Callers treat an
// error as fatal.
func OpenDB(ctx context.Context, c *config.Config) (*db.DB, error) {
	read, write := DBConfigs(c)
	d, err := db.CreateReadWrite(read, write, c.DBDebug)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("store unreachable: %w", err)
	}
	return d, nil
}

func OpenRedis(c *config.Config) (redis.RedisAdapter, error) {
	return redis.NewRedisAdapter("default", c.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: c.AppName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	})
}

// NewLimiter picks the counter backend. The in-memory counter is swept until
// ctx is done.
func NewLimiter(ctx context.Context, c *config.Config, adapter redis.RedisAdapter) (*ratelimit.Limiter, error) {
	var counter ratelimit.Counter
	switch c.RateLimitBackend {
	case config.RateLimitRedis:
		if adapter == nil {
			return nil, fmt.Errorf("RATE_LIMIT_BACKEND=redis needs a redis connection")
		}
		counter = ratelimit.NewRedisCounter(adapter)
	default:
		mem := ratelimit.NewMemoryCounter()
		go mem.Run(ctx, sweepInterval)
		counter = mem
	}
	return ratelimit.New(counter, c.RateLimitMax, c.RateLimitWindow), nil
}

func NewValidator(c *config.Config) *validation.Validator {
	return validation.New(validation.Limits{
		NameMaxLen:    c.ContactNameMaxLen,
		MessageMaxLen: c.ContactMessageMaxLen,
	})
}

func NewAuthenticator(c *config.Config) *auth.Authenticator {
	return auth.New(c.AdminJWTSecret, c.AdminJWTTTL)
}

// NotifyQueueConfig describes the notification stream. consumer names the
// reading side; publishers pass "".
func NotifyQueueConfig(c *config.Config, consumer string) queue.QueueConfig {
	if consumer == "" {
		consumer = "publisher"
	}
	return queue.QueueConfig{
		Name:              c.NotifyQueue,
		ConsumerGroup:     c.NotifyConsumerGroup,
		ConsumerName:      consumer,
		MaxRetries:        c.NotifyMaxRetries,
		VisibilityTimeout: 30 * time.Second,
		PollInterval:      c.NotifyPollInterval,
		BatchSize:         10,
		MaxLen:            10_000,
		EnableDLQ:         true,
	}
}

// ConsumerName is unique per process so restarted notifiers do not inherit
// each other's pending entries by name.
func ConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "notifier"
	}
	return host + "-" + uuid.NewString()[:8]
}

// Hostname falls back to "unknown" for metric labels.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
