package queue

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.NewNop()
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	// unique connection name per test to avoid the global adapter cache
	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })

	return mr, adapter
}

func testConfig(name string) QueueConfig {
	return QueueConfig{
		Name:              name,
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      50 * time.Millisecond,
		BatchSize:         10,
	}
}

func TestQueue_PublishAndConsume(t *testing.T) {
	_, adapter := setupTestRedis(t)

	queue, err := NewQueue(adapter, testConfig("test:queue"))
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	_, err = queue.PublishJSON(context.Background(), map[string]string{"key": "value"}, map[string]string{"type": "test"})
	require.NoError(t, err)

	received := make(chan *Message, 1)
	require.NoError(t, queue.Consume(func(ctx context.Context, msg *Message) error {
		received <- msg
		return nil
	}))

	select {
	case msg := <-received:
		var data map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "value", data["key"])
		assert.Equal(t, "test", msg.Metadata["type"])
		assert.Equal(t, 0, msg.Attempts)
		assert.WithinDuration(t, time.Now(), msg.Timestamp, 5*time.Second)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}

	require.Eventually(t, func() bool {
		stats, err := queue.GetStats(context.Background())
		return err == nil && stats.PendingMessages == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestQueue_RetryThenDeadLetter(t *testing.T) {
	mr, adapter := setupTestRedis(t)

	cfg := testConfig("test:retry:queue")
	cfg.MaxRetries = 2
	cfg.VisibilityTimeout = 100 * time.Millisecond
	cfg.EnableDLQ = true

	queue, err := NewQueue(adapter, cfg)
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	_, err = queue.PublishJSON(context.Background(), map[string]string{"test": "retry"}, map[string]string{"type": "x"})
	require.NoError(t, err)

	var calls int32
	require.NoError(t, queue.Consume(func(ctx context.Context, msg *Message) error {
		atomic.AddInt32(&calls, 1)
		return assert.AnError
	}))

	require.Eventually(t, func() bool {
		return mr.Exists(queue.DeadLetterName())
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	stats, err := queue.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.PendingMessages)
}

func TestQueue_RetrySucceeds(t *testing.T) {
	_, adapter := setupTestRedis(t)

	cfg := testConfig("test:retry-ok:queue")
	cfg.VisibilityTimeout = 100 * time.Millisecond

	queue, err := NewQueue(adapter, cfg)
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	_, err = queue.Publish(context.Background(), []byte("x"), nil)
	require.NoError(t, err)

	done := make(chan int, 1)
	var calls int32
	require.NoError(t, queue.Consume(func(ctx context.Context, msg *Message) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return assert.AnError
		}
		done <- msg.Attempts
		return nil
	}))

	select {
	case attempts := <-done:
		assert.Equal(t, 1, attempts)
	case <-time.After(3 * time.Second):
		t.Fatal("message was not redelivered")
	}
}

func TestQueue_GetStats(t *testing.T) {
	_, adapter := setupTestRedis(t)

	queue, err := NewQueue(adapter, testConfig("test:stats:queue"))
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := queue.PublishJSON(ctx, map[string]int{"count": i}, nil)
		require.NoError(t, err)
	}

	stats, err := queue.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalMessages)
}

func TestQueue_ConcurrentPublish(t *testing.T) {
	_, adapter := setupTestRedis(t)

	queue, err := NewQueue(adapter, testConfig("test:concurrent:queue"))
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := queue.PublishJSON(ctx, map[string]int{"id": id}, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stats, err := queue.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalMessages)
}

func TestNewQueue_Validation(t *testing.T) {
	_, adapter := setupTestRedis(t)

	_, err := NewQueue(adapter, QueueConfig{})
	assert.Error(t, err)

	q, err := NewQueue(adapter, QueueConfig{Name: "defaults"})
	require.NoError(t, err)
	assert.Equal(t, "default-group", q.config.ConsumerGroup)
	assert.Equal(t, 3, q.config.MaxRetries)

	// a second queue on the same stream and group reuses the group
	_, err = NewQueue(adapter, QueueConfig{Name: "defaults"})
	assert.NoError(t, err)
}

func TestQueue_Stop(t *testing.T) {
	_, adapter := setupTestRedis(t)

	queue, err := NewQueue(adapter, testConfig("test:stop:queue"))
	require.NoError(t, err)

	require.NoError(t, queue.Consume(func(ctx context.Context, msg *Message) error { return nil }))
	assert.NoError(t, queue.Stop(2*time.Second))
	assert.Error(t, queue.Consume(nil))
}

func TestNotificationPublisher(t *testing.T) {
	_, adapter := setupTestRedis(t)

	queue, err := NewQueue(adapter, testConfig("test:notify"))
	require.NoError(t, err)
	defer queue.Stop(time.Second)

	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	pub := NewNotificationPublisher(queue)
	require.NoError(t, pub.ContactCreated(context.Background(), &model.Contact{
		ID: 42, Name: "Jane", Email: "jane@example.com", Message: "Hi", Timestamp: ts,
	}))

	got := make(chan *Message, 1)
	require.NoError(t, queue.Consume(func(ctx context.Context, msg *Message) error {
		got <- msg
		return nil
	}))

	select {
	case msg := <-got:
		assert.Equal(t, EventContactCreated, msg.Metadata["type"])
		assert.Equal(t, "42", msg.Metadata["contact_id"])
		var n ContactNotification
		require.NoError(t, json.Unmarshal(msg.Data, &n))
		assert.Equal(t, int64(42), n.ContactID)
		assert.Equal(t, "jane@example.com", n.Email)
		assert.True(t, ts.Equal(n.Timestamp))
	case <-time.After(2 * time.Second):
		t.Fatal("notification not consumed")
	}
}
