package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

var NilError = goredis.Nil

type Options = goredis.UniversalOptions

// StreamMessage is one entry read from a Redis stream.
type StreamMessage struct {
	ID     string
	Values map[string]interface{}
}

// RedisAdapter prefixes every key it touches with the adapter's key prefix.
type RedisAdapter interface {
	Ping(ctx context.Context) error
	Close() error
	Client() goredis.UniversalClient

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exist(ctx context.Context, key string) (int64, error)
	// IncrWindow increments a counter that expires window after its first
	// increment and returns the new value with the time left to expiry.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	XAdd(ctx context.Context, key string, values map[string]interface{}) (string, error)
	XReadGroup(ctx context.Context, group, consumer, key string, count int64, block time.Duration) ([]StreamMessage, error)
	XAck(ctx context.Context, key, group string, ids ...string) error
	XGroupCreateMkStream(ctx context.Context, key, group, start string) error
	XLen(ctx context.Context, key string) (int64, error)
	XTrimApprox(ctx context.Context, key string, maxLen int64) error
	XPending(ctx context.Context, key, group string) (*goredis.XPending, error)
	XPendingExt(ctx context.Context, key, group string, count int64) ([]goredis.XPendingExt, error)
	XClaim(ctx context.Context, key, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error)
}

type redisAdapter struct {
	prefix   string
	Conn     goredis.UniversalClient
	ConnName string
}

var redisLock = &sync.RWMutex{}
var redisInstance map[string]RedisAdapter

// NewRedisAdapter returns the adapter registered under connName, dialing and
// registering a new one on first use.
func NewRedisAdapter(connName string, keysPrefix string, opts *goredis.UniversalOptions) (RedisAdapter, error) {
	redisLock.RLock()
	if adapter, ok := redisInstance[connName]; ok {
		redisLock.RUnlock()
		return adapter, nil
	}
	redisLock.RUnlock()

	c := goredis.NewUniversalClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "redis %s: ping", connName)
	}

	redisLock.Lock()
	defer redisLock.Unlock()
	if redisInstance == nil {
		redisInstance = make(map[string]RedisAdapter)
	}
	if adapter, ok := redisInstance[connName]; ok {
		_ = c.Close()
		return adapter, nil
	}
	adapter := &redisAdapter{
		Conn:     c,
		prefix:   keysPrefix,
		ConnName: connName,
	}
	redisInstance[connName] = adapter
	return adapter, nil
}

func GetRedis(connName ...string) RedisAdapter {
	redisLock.RLock()
	defer redisLock.RUnlock()

	name := "default"
	if len(connName) > 0 && connName[0] != "" {
		name = connName[0]
	}

	if adapter, ok := redisInstance[name]; ok {
		return adapter
	}
	return redisInstance["default"]
}

func (r *redisAdapter) Ping(ctx context.Context) error {
	return r.Conn.Ping(ctx).Err()
}

// Close closes the client and forgets the named instance.
func (r *redisAdapter) Close() error {
	redisLock.Lock()
	delete(redisInstance, r.ConnName)
	redisLock.Unlock()
	return r.Conn.Close()
}

func (r *redisAdapter) Client() goredis.UniversalClient {
	return r.Conn
}

func (r *redisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Conn.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *redisAdapter) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	cmd := r.Conn.SetNX(ctx, r.prefix+key, value, ttl)
	if err := cmd.Err(); err != nil {
		return false, err
	}
	return cmd.Val(), nil
}

func (r *redisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	st := r.Conn.Get(ctx, r.prefix+key)
	if err := st.Err(); err != nil {
		return nil, err
	}
	return st.Bytes()
}

func (r *redisAdapter) Del(ctx context.Context, key string) error {
	return r.Conn.Del(ctx, r.prefix+key).Err()
}

func (r *redisAdapter) Exist(ctx context.Context, key string) (int64, error) {
	return r.Conn.Exists(ctx, r.prefix+key).Result()
}

func (r *redisAdapter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := r.prefix + key
	var incr *goredis.IntCmd
	var ttl *goredis.DurationCmd
	_, err := r.Conn.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "incr window")
	}

	left := ttl.Val()
	// A negative TTL means the key was just created or lost its expiry.
	if left < 0 {
		if err := r.Conn.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, errors.Wrap(err, "incr window: expire")
		}
		left = window
	}
	return incr.Val(), left, nil
}

func (r *redisAdapter) XAdd(ctx context.Context, key string, values map[string]interface{}) (string, error) {
	cmd := r.Conn.XAdd(ctx, &goredis.XAddArgs{
		Stream: r.prefix + key,
		ID:     "*",
		Values: values,
	})
	if cmd.Err() != nil {
		return "", cmd.Err()
	}
	return cmd.Val(), nil
}

// XReadGroup reads new entries for consumer. A zero block returns
// immediately; NilError is returned when nothing is available.
func (r *redisAdapter) XReadGroup(ctx context.Context, group, consumer, key string, count int64, block time.Duration) ([]StreamMessage, error) {
	if block <= 0 {
		block = -1
	}
	streams := r.Conn.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{r.prefix + key, ">"},
		Count:    count,
		Block:    block,
	})
	if streams.Err() != nil {
		return nil, streams.Err()
	}

	var messages []StreamMessage
	for _, stream := range streams.Val() {
		for _, msg := range stream.Messages {
			messages = append(messages, StreamMessage{ID: msg.ID, Values: msg.Values})
		}
	}
	return messages, nil
}

func (r *redisAdapter) XAck(ctx context.Context, key, group string, ids ...string) error {
	return r.Conn.XAck(ctx, r.prefix+key, group, ids...).Err()
}

// XGroupCreateMkStream creates the group and the stream if needed. An
// existing group is not an error.
func (r *redisAdapter) XGroupCreateMkStream(ctx context.Context, key, group, start string) error {
	err := r.Conn.XGroupCreateMkStream(ctx, r.prefix+key, group, start).Err()
	if err != nil && isBusyGroup(err) {
		return nil
	}
	return err
}

func (r *redisAdapter) XLen(ctx context.Context, key string) (int64, error) {
	return r.Conn.XLen(ctx, r.prefix+key).Result()
}

func (r *redisAdapter) XTrimApprox(ctx context.Context, key string, maxLen int64) error {
	return r.Conn.XTrimMaxLenApprox(ctx, r.prefix+key, maxLen, 0).Err()
}

func (r *redisAdapter) XPending(ctx context.Context, key, group string) (*goredis.XPending, error) {
	return r.Conn.XPending(ctx, r.prefix+key, group).Result()
}

func (r *redisAdapter) XPendingExt(ctx context.Context, key, group string, count int64) ([]goredis.XPendingExt, error) {
	return r.Conn.XPendingExt(ctx, &goredis.XPendingExtArgs{
		Stream: r.prefix + key,
		Group:  group,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
}

func (r *redisAdapter) XClaim(ctx context.Context, key, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error) {
	cmd := r.Conn.XClaim(ctx, &goredis.XClaimArgs{
		Stream:   r.prefix + key,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	})
	if cmd.Err() != nil {
		return nil, cmd.Err()
	}

	messages := make([]StreamMessage, 0, len(cmd.Val()))
	for _, msg := range cmd.Val() {
		messages = append(messages, StreamMessage{ID: msg.ID, Values: msg.Values})
	}
	return messages, nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
