package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/grievease/petition-triage/internal/adapters/http"
	"github.com/grievease/petition-triage/internal/bootstrap"
	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/infrastructure/resilience"
	"github.com/grievease/petition-triage/internal/infrastructure/schedule"
	"github.com/grievease/petition-triage/internal/observability/logging"
	"github.com/grievease/petition-triage/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger: logger,
		Hooks: resilience.Hooks{
			OnRetry:       httpMetrics.RecordRetry,
			OnStateChange: httpMetrics.RecordBreakerState,
		},
		CatalogObserver: httpMetrics,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	scheduler := schedule.New(logger, time.UTC)
	err = scheduler.Add("catalog_refresh", cfg.CatalogRefreshSchedule, time.Minute, func(jobCtx context.Context) error {
		_, err := app.CatalogUC.Reload(jobCtx)
		return err
	})
	if err != nil {
		log.Fatalf("schedule catalog refresh: %v", err)
	}
	go scheduler.Run(ctx)

	if app.TaxonomyWatcher != nil && cfg.TaxonomyWatch {
		go func() {
			if err := app.TaxonomyWatcher.Run(ctx, nil); err != nil {
				logger.Error("taxonomy_watcher_stopped", "error", err)
			}
		}()
	}

	router, err := httpadapter.NewRouter(cfg, httpadapter.Services{
		Submitter:    app.SubmitUC,
		Reclassifier: app.OverrideUC,
		Reader:       app.ReadUC,
		Advisor:      app.AdvisorUC,
		Catalog:      app.CatalogUC,
		CatalogAdmin: app.AdminUC,
		Analytics:    app.AnalyticsUC,
		Extractor:    app.Extractor,
	}, httpadapter.WithMetrics(httpMetrics), httpadapter.WithLogger(logger))
	if err != nil {
		log.Fatalf("router error: %v", err)
	}

	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		log.Fatalf("api listen error: %v", err)
	}
	if cfg.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort, "max_connections", cfg.MaxConnections)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
