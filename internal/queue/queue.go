package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
)

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	// Attempts counts earlier deliveries of this entry.
	Attempts int
}

// MessageHandler processes one message. A nil return acks it; an error leaves
// it pending so it is reclaimed after the visibility timeout.
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

type Queue struct {
	adapter redis.RedisAdapter
	config  QueueConfig
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *logger.ZapLogger
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	ConsumerCount   int64
}

func NewQueue(adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "default-group"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		adapter: adapter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.GetLogger().With("queue", config.Name),
	}

	if err := adapter.XGroupCreateMkStream(ctx, config.Name, config.ConsumerGroup, "0"); err != nil {
		cancel()
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return q, nil
}

func (q *Queue) Name() string {
	return q.config.Name
}

// Publish appends a message to the stream.
func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]interface{}{
		"data":      string(data),
		"timestamp": time.Now().Unix(),
	}
	for k, v := range metadata {
		values["meta_"+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, values)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	if q.config.MaxLen > 0 {
		_ = q.adapter.XTrimApprox(ctx, q.config.Name, q.config.MaxLen)
	}
	return id, nil
}

func (q *Queue) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return q.Publish(ctx, jsonData, metadata)
}

// Consume starts the polling loop in the background.
func (q *Queue) Consume(handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}
	q.handler = handler
	q.wg.Add(1)
	go q.consumeLoop()
	return nil
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processMessages()
			q.claimStuckMessages()
		}
	}
}

func (q *Queue) processMessages() {
	messages, err := q.adapter.XReadGroup(q.ctx, q.config.ConsumerGroup, q.config.ConsumerName, q.config.Name, q.config.BatchSize, 0)
	if err != nil {
		if !errors.Is(err, redis.NilError) && q.ctx.Err() == nil {
			q.log.Warn("read group failed", "error", err)
		}
		return
	}

	for _, sm := range messages {
		q.handleMessage(streamMessageToMessage(sm))
	}
}

// claimStuckMessages takes over entries that stayed pending longer than the
// visibility timeout, whichever consumer held them.
func (q *Queue) claimStuckMessages() {
	pending, err := q.adapter.XPendingExt(q.ctx, q.config.Name, q.config.ConsumerGroup, 100)
	if err != nil || len(pending) == 0 {
		return
	}

	retries := make(map[string]int64, len(pending))
	var ids []string
	for _, p := range pending {
		if p.Idle >= q.config.VisibilityTimeout {
			ids = append(ids, p.ID)
			retries[p.ID] = p.RetryCount
		}
	}
	if len(ids) == 0 {
		return
	}

	messages, err := q.adapter.XClaim(q.ctx, q.config.Name, q.config.ConsumerGroup, q.config.ConsumerName, q.config.VisibilityTimeout, ids...)
	if err != nil {
		q.log.Warn("claim failed", "error", err)
		return
	}

	for _, sm := range messages {
		msg := streamMessageToMessage(sm)
		msg.Attempts = int(retries[sm.ID])
		q.handleMessage(msg)
	}
}

func (q *Queue) handleMessage(msg *Message) {
	if msg.Attempts >= q.config.MaxRetries {
		q.log.Warn("message exceeded retries", "id", msg.ID, "attempts", msg.Attempts)
		q.moveToDeadLetterQueue(msg)
		_ = q.ack(msg.ID)
		return
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(ctx, msg); err != nil {
		q.log.Warn("handler failed, leaving pending", "id", msg.ID, "attempts", msg.Attempts, "error", err)
		return
	}
	if err := q.ack(msg.ID); err != nil {
		q.log.Warn("ack failed", "id", msg.ID, "error", err)
	}
}

func (q *Queue) ack(id string) error {
	return q.adapter.XAck(q.ctx, q.config.Name, q.config.ConsumerGroup, id)
}

func (q *Queue) DeadLetterName() string {
	return q.config.Name + ":dlq"
}

func (q *Queue) moveToDeadLetterQueue(msg *Message) {
	if !q.config.EnableDLQ {
		return
	}

	values := map[string]interface{}{
		"data":           string(msg.Data),
		"original_id":    msg.ID,
		"attempts":       msg.Attempts,
		"failed_at":      time.Now().Unix(),
		"original_queue": q.config.Name,
	}
	for k, v := range msg.Metadata {
		values["meta_"+k] = v
	}

	if _, err := q.adapter.XAdd(q.ctx, q.DeadLetterName(), values); err != nil {
		q.log.Error("dead letter publish failed", "id", msg.ID, "error", err)
	}
}

func streamMessageToMessage(sm redis.StreamMessage) *Message {
	msg := &Message{
		ID:       sm.ID,
		Metadata: make(map[string]string),
	}

	for k, v := range sm.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "data":
			msg.Data = []byte(s)
		case k == "timestamp":
			if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
				msg.Timestamp = time.Unix(unix, 0)
			}
		case strings.HasPrefix(k, "meta_"):
			msg.Metadata[strings.TrimPrefix(k, "meta_")] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

// Stop ends the consume loop and waits up to timeout for in-flight handlers.
func (q *Queue) Stop(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue to stop")
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	total, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{TotalMessages: total}
	if pending, err := q.adapter.XPending(ctx, q.config.Name, q.config.ConsumerGroup); err == nil && pending != nil {
		stats.PendingMessages = pending.Count
		stats.ConsumerCount = int64(len(pending.Consumers))
	}
	return stats, nil
}
