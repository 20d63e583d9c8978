package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chanida/go-bakery-shop/internal/api"
	"github.com/chanida/go-bakery-shop/internal/bot"
	"github.com/chanida/go-bakery-shop/internal/config"
	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/events"
	"github.com/chanida/go-bakery-shop/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	loc, err := time.LoadLocation(cfg.Shop.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Shop.Timezone).Msg("load shop timezone")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	logger.Info().Msg("connected to database")

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redisx.New(cfg.Redis.Addr)
		defer rdb.Close()
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("reply cache enabled")
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic, 256, logger)
		logger.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).
			Msg("order event publishing enabled")
	}
	defer publisher.Close()

	botRouter := bot.NewRouter(bot.SQLStore{DB: db}, rdb, loc, cfg.Redis.ReplyTTL, logger)
	server := api.NewServer(db, botRouter, publisher, loc, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownDone := make(chan struct{})
	go func() {
		<-sigChan
		logger.Info().Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
		close(shutdownDone)
	}()

	logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
	<-shutdownDone
	logger.Info().Msg("shutdown complete")
}
