package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calmora/billing-webhooks/billing"
	"github.com/calmora/billing-webhooks/billing/postgres"
	"github.com/calmora/billing-webhooks/config"
	"github.com/calmora/billing-webhooks/internal/http/chi"
	"github.com/calmora/billing-webhooks/metrics"
	"github.com/calmora/billing-webhooks/notify"
	"github.com/calmora/billing-webhooks/rules"
	"github.com/calmora/billing-webhooks/webhook"
	"github.com/calmora/billing-webhooks/webhook/idempotency"
	boltstore "github.com/calmora/billing-webhooks/webhook/idempotency/bolt"
	redisstore "github.com/calmora/billing-webhooks/webhook/idempotency/redis"
	"github.com/calmora/billing-webhooks/webhook/signature"
)

const TIMEOUT = 30 * time.Second

/*
 * The entry point wires the layers in one direction only: the transport
 * imports the processing core, which imports the business and storage
 * layers. Everything is constructed here, nothing is global.
 */

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	secrets, err := cfg.Secrets()
	if err != nil {
		return err
	}

	policy, err := cfg.RetryPolicy()
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	repo, err := postgres.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer repo.Close(ctx)

	table := rules.NewTable()
	if cfg.RulesFile != "" {
		if err := table.Load(cfg.RulesFile); err != nil {
			return err
		}
	}

	exporter, err := metrics.NewExporter()
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}
	defer exporter.Shutdown(context.Background())

	dispatcher := webhook.NewDispatcher(logger)
	handlers := billing.NewHandlers(billing.NewService(repo), notify.NewLogSender(logger), logger)
	if err := handlers.Register(dispatcher); err != nil {
		return err
	}

	processor, err := webhook.NewProcessor(webhook.ProcessorConfig{
		Secrets:    signature.StaticProvider(secrets),
		Tolerance:  cfg.Tolerance(),
		Store:      store,
		Dispatcher: dispatcher,
		Retrier:    webhook.NewRetrier(policy, logger).WithAttemptOverride(table.MaxRetriesFor),
		Gate:       table,
		Recorder:   exporter,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	r := chi.WebhookHandlers(processor, cfg.SignatureHeader, exporter.Handler())
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info("listening", "port", cfg.Port, "idempotency_backend", cfg.IdempotencyBackend)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-errShutdown
}

// newStore builds the idempotency store selected by configuration and a
// cleanup for it.
func newStore(ctx context.Context, cfg *config.Config) (idempotency.Store, func(), error) {
	switch cfg.IdempotencyBackend {
	case "memory":
		return idempotency.NewMemoryStore(cfg.IdempotencyCapacity), func() {}, nil
	case "redis":
		store, err := redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, func() { store.Close(ctx) }, nil
	case "bolt":
		store, err := boltstore.NewStore(cfg.BoltPath, cfg.IdempotencyCapacity)
		if err != nil {
			return nil, nil, fmt.Errorf("opening bolt store: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	default:
		errShutdown <- fmt.Errorf("forcing the server to close: %w", err)
	}
}
