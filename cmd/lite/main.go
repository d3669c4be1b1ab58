// Command lite is the single-binary SQLite flavour of the contact API,
// served with gin.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/bootstrap"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ginapi"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/repository"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	log := ginapi.NewLogger(os.Getenv("LOG_ENV") == "production", os.Getenv("LOG_LEVEL"))

	// lite always runs on SQLite
	if os.Getenv("DB_DRIVER") == "" {
		_ = os.Setenv("DB_DRIVER", config.DriverSQLite)
	}
	if err := config.Load(bootstrap.EnvPath(os.Args[1:])); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()
	if cfg.DBDriver != config.DriverSQLite {
		log.Fatal().Str("driver", cfg.DBDriver).Msg("lite only supports DB_DRIVER=sqlite")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open the store")
	}
	defer store.Close()
	if err := store.MigrateUp(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate the store")
	}

	// lite never dials redis, the counter stays in memory
	cfg.RateLimitBackend = config.RateLimitMemory
	limiter, err := bootstrap.NewLimiter(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build the rate limiter")
	}

	router := ginapi.NewRouter(ginapi.Options{
		Contacts:       services.NewContactService(repository.NewContactRepository(store), bootstrap.NewValidator(cfg)),
		Health:         services.NewHealthService(),
		Limiter:        limiter,
		Auth:           bootstrap.NewAuthenticator(cfg),
		Log:            log,
		TrustedProxies: cfg.TrustedProxyCount,
		CORSOrigin:     cfg.CorsAllowOrigin,
		StaticDir:      cfg.StaticDir,
		DocsExposed:    cfg.DocsExposed(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("sqlite", cfg.SQLitePath).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
