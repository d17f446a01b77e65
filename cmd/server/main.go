package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/config"
	"github.com/clehider/BazarMundoVictor/internal/infra"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/repository"
	"github.com/clehider/BazarMundoVictor/internal/router"
	"github.com/clehider/BazarMundoVictor/internal/service"
	"github.com/clehider/BazarMundoVictor/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// The document tree. Redis is the durable backend; memory is for local
	// development without external services (no queues, no workers).
	var (
		store kvstore.Store
		rdb   *redis.Client
	)
	switch cfg.KVBackend {
	case "memory":
		store = kvstore.NewMemory()
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = kvstore.NewRedis(rdb)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async machinery: ticket rendering, low-stock alerts, and the
	// conciliación path that replays ledger appends for ventas whose caja
	// movement did not land. Only available with a Redis backend.
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)

		mailer := infra.NewMailer(cfg)
		smtpBreaker := infra.NewBreaker(infra.MailBreakerConfig())

		ventaRepo := repository.NewVentaRepository(store)
		cajaRepo := repository.NewCajaRepository(store)
		productoRepo := repository.NewProductoRepository(store)
		configRepo := repository.NewConfiguracionRepository(store)

		ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, productoRepo, dispatcher)
		ticketSvc := service.NewTicketService(ventaRepo, configRepo, cfg.TicketStoragePath)
		alertaSvc := service.NewAlertaService(mailer, smtpBreaker)

		pool := worker.NewPool(rdb, ventaSvc, ticketSvc, alertaSvc)
		pool.Start(ctx, cfg.WorkerPoolSize)

		worker.StartReconcileCron(ctx, worker.ReconcileCronConfig{
			VentaRepo:   ventaRepo,
			Conciliador: ventaSvc,
		})
	}

	r := router.New(cfg, store, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Bazar Mundo Victor backend listening on :%d", cfg.Port)
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
