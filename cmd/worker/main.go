package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grievease/petition-triage/internal/bootstrap"
	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/infrastructure/resilience"
	"github.com/grievease/petition-triage/internal/infrastructure/schedule"
	"github.com/grievease/petition-triage/internal/observability/logging"
	"github.com/grievease/petition-triage/internal/observability/metrics"
)

const (
	serviceName  = "worker"
	eventTimeout = 30 * time.Second
	reportPrefix = "analytics_"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger: logger,
		Hooks: resilience.Hooks{
			OnRetry:       workerMetrics.RecordRetry,
			OnStateChange: workerMetrics.RecordBreakerState,
		},
		CatalogObserver: workerMetrics,
		WithSinks:       true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	scheduler := schedule.New(logger, time.UTC)
	addJob := func(name, spec string, timeout time.Duration, job schedule.Job) {
		err := scheduler.Add(name, spec, timeout, func(jobCtx context.Context) error {
			err := job(jobCtx)
			workerMetrics.RecordJob(serviceName, name, err)
			return err
		})
		if err != nil {
			log.Fatalf("schedule %s: %v", name, err)
		}
	}
	addJob("catalog_refresh", cfg.CatalogRefreshSchedule, time.Minute, func(jobCtx context.Context) error {
		_, err := app.CatalogUC.Reload(jobCtx)
		return err
	})
	addJob("analytics_archive", cfg.AnalyticsSchedule, 5*time.Minute, func(jobCtx context.Context) error {
		key, err := app.AnalyticsUC.Archive(jobCtx)
		if err != nil {
			return err
		}
		removed, err := app.Reports.Prune(jobCtx, reportPrefix, cfg.AnalyticsRetainReports)
		if err != nil {
			return err
		}
		logger.Info("analytics_archived", "key", key, "pruned", removed)
		return nil
	})
	go scheduler.Run(ctx)

	if app.TaxonomyWatcher != nil && cfg.TaxonomyWatch {
		go func() {
			if err := app.TaxonomyWatcher.Run(ctx, nil); err != nil {
				logger.Error("taxonomy_watcher_stopped", "error", err)
			}
		}()
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "queue_group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribePetitionEvents(ctx, func(handlerCtx context.Context, event domain.PetitionEvent) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, eventTimeout)
		defer cancel()

		if !event.OccurredAt.IsZero() {
			workerMetrics.ObserveEventLag(serviceName, time.Since(event.OccurredAt))
		}
		workerMetrics.StartEvent()
		started := time.Now()
		err := app.EventsUC.HandlePetitionEvent(processCtx, event)
		workerMetrics.FinishEvent(serviceName, event.Type, time.Since(started), err)
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
