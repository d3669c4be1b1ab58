package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/bootstrap"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/queue"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/repository"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/services"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
	"github.com/pkg/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(bootstrap.EnvPath(os.Args[1:]))
	if err != nil {
		logger.Fatal(errors.Wrap(err, "failed to load config"))
	}
	cfg := config.Get()
	logger.Info("starting contact api", "version", version, "commit", commit, "date", date, "driver", cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenDB(ctx, cfg)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "failed connecting to the store"))
	}
	defer store.Close()
	if err := store.MigrateUp(); err != nil {
		logger.Fatal(errors.Wrap(err, "failed to migrate the store"))
	}

	var redisAdap redis.RedisAdapter
	if cfg.RateLimitBackend == config.RateLimitRedis || cfg.NotifyEnabled {
		redisAdap, err = bootstrap.OpenRedis(cfg)
		if err != nil {
			logger.Fatal(errors.Wrap(err, "failed connecting to redis"))
		}
		defer redisAdap.Close()
	}

	limiter, err := bootstrap.NewLimiter(ctx, cfg, redisAdap)
	if err != nil {
		logger.Fatal(err)
	}

	if cfg.MetricsAddr != "" {
		if err := prom.Create(bootstrap.Hostname(), cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Fatal(errors.Wrap(err, "failed to create prometheus metrics"))
		}
		go prom.ListenAndServer(cfg.MetricsAddr, cfg.MetricsPath)
	}

	// services
	contactService := services.NewContactService(repository.NewContactRepository(store), bootstrap.NewValidator(cfg))
	if cfg.NotifyEnabled {
		q, err := queue.NewQueue(redisAdap, bootstrap.NotifyQueueConfig(cfg, ""))
		if err != nil {
			logger.Fatal(errors.Wrap(err, "failed creating notification queue"))
		}
		contactService.WithNotifier(queue.NewNotificationPublisher(q))
	}

	s := bootstrap.NewAPIServer(cfg, bootstrap.APIDeps{
		Contacts: contactService,
		Health:   services.NewHealthService(),
		Limiter:  limiter,
		Auth:     bootstrap.NewAuthenticator(cfg),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe(cfg.ListenAddr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http-server shutdown", "error", err)
	}
}
