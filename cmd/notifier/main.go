// Command notifier e-mails the site owner about new contact submissions
// read from the notification stream.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/bootstrap"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/notifier"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
	"github.com/pkg/errors"
)

func main() {
	defer logger.Sync()

	err := config.Load(bootstrap.EnvPath(os.Args[1:]))
	if err != nil {
		logger.Fatal(errors.Wrap(err, "failed to load config"))
	}
	cfg := config.Get()

	recipients := cfg.NotifyRecipients()
	if len(recipients) == 0 {
		logger.Fatal(errors.New("NOTIFY_TO is empty, nobody to notify"))
	}

	mailer, err := notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:          cfg.SmtpHost,
		Port:          cfg.SmtpPort,
		User:          cfg.SmtpUser,
		Pass:          cfg.SmtpPass,
		From:          cfg.SmtpFrom,
		SkipTLSVerify: cfg.SmtpSkipTLSVerify,
	})
	if err != nil {
		logger.Fatal(err)
	}

	redisAdap, err := bootstrap.OpenRedis(cfg)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "failed connecting to redis"))
	}
	defer redisAdap.Close()

	if cfg.MetricsAddr != "" {
		if err := prom.Create(bootstrap.Hostname(), cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Fatal(errors.Wrap(err, "failed to create prometheus metrics"))
		}
		go prom.ListenAndServer(cfg.MetricsAddr, cfg.MetricsPath)
	}

	idemCfg := notifier.DefaultIdempotencyConfig()
	idemCfg.MaxRetries = cfg.NotifyMaxRetries
	processor := notifier.NewProcessor(mailer, notifier.NewIdempotency(redisAdap, idemCfg), recipients)

	svc := notifier.NewService(redisAdap, processor, notifier.ServiceConfig{
		Queue:     bootstrap.NotifyQueueConfig(cfg, bootstrap.ConsumerName()),
		Consumers: 1,
	})
	if err := svc.Start(); err != nil {
		logger.Fatal(errors.Wrap(err, "failed to start notifier"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	svc.Stop(notifier.DefaultShutdownTimeout)
}
