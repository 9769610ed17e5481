package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"rfportal/internal/api"
	accountapp "rfportal/internal/app/account"
	authapp "rfportal/internal/app/auth"
	charapp "rfportal/internal/app/character"
	"rfportal/internal/platform/cache"
	"rfportal/internal/platform/config"
	"rfportal/internal/platform/db"
	"rfportal/internal/platform/migrate"
	"rfportal/internal/platform/mq"
	"rfportal/internal/platform/observability"
	"rfportal/internal/store"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.NewLogger(cfg.Env)

	if cfg.BootstrapSchema {
		if err := migrate.Up(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("schema bootstrap failed")
		}
	}

	pg, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MaxConnIdle: cfg.DBMaxConnIdle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pg.Close()

	var redisClient *redis.Client
	redisClient, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; continuing without item cache")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := mq.NewPublisher(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable; using noop publisher")
		publisher = mq.NewNoopPublisher()
	}
	defer publisher.Close()

	accounts := store.NewAccountStore(pg)
	characters := store.NewCharacterStore(pg)
	items := store.NewItemStore(pg)

	sessions := authapp.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	authSvc := authapp.NewService(accounts, sessions, publisher, logger, cfg.PromoPremiumWindow)
	accountSvc := accountapp.NewService(accounts, characters)
	charSvc := charapp.NewService(characters, items, redisClient, cfg.ItemCacheTTL, logger)

	handler := api.NewHandler(logger, authSvc, accountSvc, charSvc, pg, cfg.CorsOrigin, cfg.MaxRequestBody, cfg.RequestTimeout, cfg.RequireSession)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
