package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/infra"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/router"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Pretty console logs in development, JSON in production
	log.Logger = infra.NewLogger(cfg.Env, os.Stderr)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async workers: receipt PDFs and low-stock alert digests. Handlers are
	// wired here (composition root) so the pool has full access to infra.
	mailer := infra.NewMailer(cfg)
	mailerCB := infra.NewCircuitBreaker(infra.CBConfigFrom(cfg))
	dispatcher := worker.NewDispatcher(rdb)
	txRepo := repository.NewTransactionRepository(db)

	handlers := worker.Handlers{
		Receipt: worker.NewReceiptWorker(txRepo, cfg.ReceiptStoragePath),
		Alert:   worker.NewAlertWorker(mailer, mailerCB, cfg.AlertEmail),
	}
	worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	// Change feed: Redis pub/sub fanned out to websocket clients
	hub := notify.NewHub()
	go hub.Run(ctx)
	go hub.Subscribe(ctx, rdb)

	r := router.New(cfg, db, rdb, router.Deps{
		Hub:        hub,
		Dispatcher: dispatcher,
		MailerCB:   mailerCB,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("garage backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
