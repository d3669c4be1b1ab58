package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
)

var (
	ErrAlreadyDelivered   = errors.New("notification already delivered")
	ErrLockAcquireFailed  = errors.New("failed to acquire delivery lock")
	ErrMaxRetriesExceeded = errors.New("maximum delivery attempts exceeded")
)

type IdempotencyConfig struct {
	LockTTL      time.Duration
	DeliveredTTL time.Duration
	MaxRetries   int

	RetryKeyPrefix     string
	LockKeyPrefix      string
	DeliveredKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		DeliveredTTL:       24 * time.Hour,
		MaxRetries:         5,
		RetryKeyPrefix:     "notify:retry:",
		LockKeyPrefix:      "notify:lock:",
		DeliveredKeyPrefix: "notify:delivered:",
	}
}

// Idempotency keeps one e-mail per contact id across redeliveries and
// competing consumers: a short lock guards the send, a long-lived marker
// records that it happened.
type Idempotency struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotency(adapter redis.RedisAdapter, config IdempotencyConfig) *Idempotency {
	return &Idempotency{redis: adapter, config: config}
}

// Delivery is the lock held while one notification is being sent.
type Delivery struct {
	Key        string
	RetryCount int
	held       bool
}

func (s *Idempotency) Acquire(ctx context.Context, key string) (*Delivery, error) {
	exists, err := s.redis.Exist(ctx, s.config.DeliveredKeyPrefix+key)
	if err != nil {
		// a duplicate mail is preferable to a lost one
		logger.Warn("delivered marker check failed", "key", key, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyDelivered
	}

	retryCount, err := s.RetryCount(ctx, key)
	if err != nil {
		logger.Warn("retry counter read failed", "key", key, "error", err)
	}
	if s.config.MaxRetries > 0 && retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: key=%s, retries=%d", ErrMaxRetriesExceeded, key, retryCount)
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+key, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &Delivery{Key: key, RetryCount: retryCount, held: true}, nil
}

// MarkDelivered sets the delivered marker and clears the lock and retry counter.
func (s *Idempotency) MarkDelivered(ctx context.Context, d *Delivery) error {
	if err := s.redis.Set(ctx, s.config.DeliveredKeyPrefix+d.Key, []byte("1"), s.config.DeliveredTTL); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}

	if err := s.redis.Del(ctx, s.config.RetryKeyPrefix+d.Key); err != nil {
		logger.Warn("retry counter cleanup failed", "key", d.Key, "error", err)
	}
	return s.Release(ctx, d)
}

// MarkFailed bumps the retry counter and frees the lock for the next attempt.
func (s *Idempotency) MarkFailed(ctx context.Context, d *Delivery) error {
	next := []byte(strconv.Itoa(d.RetryCount + 1))
	if err := s.redis.Set(ctx, s.config.RetryKeyPrefix+d.Key, next, s.config.DeliveredTTL); err != nil {
		logger.Warn("retry counter update failed", "key", d.Key, "error", err)
	}
	return s.Release(ctx, d)
}

func (s *Idempotency) Release(ctx context.Context, d *Delivery) error {
	if d == nil || !d.held {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+d.Key); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	d.held = false
	return nil
}

func (s *Idempotency) RetryCount(ctx context.Context, key string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+key)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *Idempotency) IsDelivered(ctx context.Context, key string) (bool, error) {
	exists, err := s.redis.Exist(ctx, s.config.DeliveredKeyPrefix+key)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
