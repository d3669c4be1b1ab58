package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/queue"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
)

const (
	DefaultStatsInterval   = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	highLagThreshold       = 1000
)

type ServiceConfig struct {
	Queue         queue.QueueConfig
	Consumers     int
	StatsInterval time.Duration
}

// Service runs the stream consumers feeding a Processor and reports queue
// health while they run.
type Service struct {
	adapter   redis.RedisAdapter
	processor *Processor
	config    ServiceConfig
	queues    []*queue.Queue
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewService(adapter redis.RedisAdapter, processor *Processor, config ServiceConfig) *Service {
	if config.Consumers <= 0 {
		config.Consumers = 1
	}
	if config.StatsInterval <= 0 {
		config.StatsInterval = DefaultStatsInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		adapter:   adapter,
		processor: processor,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Service) Start() error {
	logger.Info("starting notifier", "queue", s.config.Queue.Name, "consumers", s.config.Consumers)

	for i := 0; i < s.config.Consumers; i++ {
		qc := s.config.Queue
		qc.ConsumerName = fmt.Sprintf("%s-%d", qc.ConsumerName, i)

		q, err := queue.NewQueue(s.adapter, qc)
		if err != nil {
			s.stopQueues(DefaultShutdownTimeout)
			return fmt.Errorf("failed to create consumer %d: %w", i, err)
		}
		if err := q.Consume(s.processor.Handle); err != nil {
			s.stopQueues(DefaultShutdownTimeout)
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(1)
	go s.statsReporter()
	return nil
}

func (s *Service) statsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportStats()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportStats() {
	if err := s.adapter.Ping(s.ctx); err != nil {
		logger.Error("notifier health check failed: redis unreachable", "error", err)
		return
	}
	if len(s.queues) == 0 {
		return
	}

	q := s.queues[0]
	stats, err := q.GetStats(s.ctx)
	if err != nil {
		logger.Warn("queue stats unavailable", "queue", q.Name(), "error", err)
		return
	}
	dead, _ := s.adapter.XLen(s.ctx, q.DeadLetterName())
	prom.SetNotifierQueueDepth(prom.DepthPending, stats.PendingMessages)
	prom.SetNotifierQueueDepth(prom.DepthDead, dead)

	logger.Info("notifier stats",
		"queue", q.Name(),
		"total", stats.TotalMessages,
		"pending", stats.PendingMessages,
		"consumers", stats.ConsumerCount,
		"dead_letters", dead)
	if stats.PendingMessages > highLagThreshold {
		logger.Warn("notification queue has high lag", "pending", stats.PendingMessages)
	}
}

// Stop cancels the consumers and waits up to timeout for each of them.
func (s *Service) Stop(timeout time.Duration) {
	logger.Info("shutting down notifier")
	s.cancel()
	s.stopQueues(timeout)
	s.wg.Wait()
	logger.Info("notifier stopped")
}

func (s *Service) stopQueues(timeout time.Duration) {
	var wg sync.WaitGroup
	for _, q := range s.queues {
		wg.Add(1)
		go func(q *queue.Queue) {
			defer wg.Done()
			if err := q.Stop(timeout); err != nil {
				logger.Error("error stopping consumer", "queue", q.Name(), "error", err)
			}
		}(q)
	}
	wg.Wait()
}
