package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/apptqueue/internal/app"
	"github.com/jwalitptl/apptqueue/internal/config"
	internalworker "github.com/jwalitptl/apptqueue/internal/worker"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
	"github.com/jwalitptl/apptqueue/pkg/worker"
)

const healthAddr = ":8081"

func setupHealthCheck(l *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/health/metrics", promhttp.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	l := app.NewLogger(cfg.Log).WithFields(map[string]interface{}{"component": "worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg.Database, l)
	if err != nil {
		l.Fatal(err, "Failed to open store")
	}
	defer closeStore()

	broker, err := app.OpenBroker(cfg, l.Zerolog())
	if err != nil {
		l.Fatal(err, "Failed to create message broker", "driver", cfg.Messaging.Driver)
	}
	defer broker.Close()

	m := metrics.NewMetrics("apptqueue", "worker")

	publisher := worker.NewActivityPublisher(
		store,
		broker,
		worker.ActivityPublisherConfig{
			Channel:       cfg.Messaging.Channel,
			BatchSize:     cfg.Activity.BatchSize,
			PollInterval:  cfg.Activity.PublishInterval,
			RetryAttempts: cfg.Activity.RetryAttempts,
			RetryDelay:    cfg.Activity.RetryDelay,
		},
		l,
		m,
	)
	cleanup := internalworker.NewActivityCleanupWorker(
		store.Repositories().Activity,
		cfg.Activity.RetentionDays,
		cfg.Activity.CleanupInterval,
		l,
		m,
	)

	health := setupHealthCheck(l)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		publisher.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	<-ctx.Done()
	l.Info("Shutting down...")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = health.Shutdown(shutdownCtx)
}
