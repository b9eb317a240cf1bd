package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/ports"
	"github.com/grievease/petition-triage/internal/core/usecase"
	"github.com/grievease/petition-triage/internal/infrastructure/cache/redis"
	"github.com/grievease/petition-triage/internal/infrastructure/extractor/letter"
	"github.com/grievease/petition-triage/internal/infrastructure/graph/neo4j"
	"github.com/grievease/petition-triage/internal/infrastructure/notify/slack"
	"github.com/grievease/petition-triage/internal/infrastructure/queue/nats"
	"github.com/grievease/petition-triage/internal/infrastructure/repository/postgres"
	"github.com/grievease/petition-triage/internal/infrastructure/resilience"
	"github.com/grievease/petition-triage/internal/infrastructure/seed"
	"github.com/grievease/petition-triage/internal/infrastructure/spreadsheet"
	"github.com/grievease/petition-triage/internal/infrastructure/storage/localfs"
	"github.com/grievease/petition-triage/internal/infrastructure/watch"
)

// Options tailor the wiring to the process being started.
type Options struct {
	Logger          *slog.Logger
	Hooks           resilience.Hooks
	CatalogObserver usecase.CatalogObserver
	// WithSinks connects the worker-side integrations (Neo4j projection, Slack alerts).
	WithSinks bool
	// WithoutQueue skips NATS for processes that never publish, such as the MCP server.
	WithoutQueue bool
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Engine          *classification.Engine
	Queue           *nats.Queue
	Reports         *localfs.Storage
	TaxonomyWatcher *watch.TaxonomyWatcher

	SubmitUC    *usecase.SubmitPetitionUseCase
	OverrideUC  ports.PetitionReclassifier
	ReadUC      ports.PetitionReader
	AdvisorUC   ports.ClassificationAdvisor
	CatalogUC   *usecase.CatalogUseCase
	AdminUC     ports.CatalogAdmin
	AnalyticsUC ports.AnalyticsService
	EventsUC    ports.EventProcessor
	Extractor   ports.TextExtractor

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:   cfg.ResilienceRetryAttempts,
		BreakerEnabled:     true,
		BreakerOpenTimeout: cfg.ResilienceBreakerTimeout,
		Hooks:              opts.Hooks,
	})

	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN, postgres.PoolOptions{
		MaxOpenConns: cfg.PostgresMaxOpenConns,
		MaxIdleConns: cfg.PostgresMaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.onClose(func() { _ = db.Close() })
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	catalogRepo := postgres.NewCatalogRepository(db, executor)
	petitionRepo := postgres.NewPetitionRepository(db)

	var cache ports.CatalogCache
	if cfg.RedisURL != "" {
		redisCache, err := redis.Connect(ctx, cfg.RedisURL, redis.Options{Key: cfg.RedisCatalogKey, TTL: cfg.RedisCatalogTTL})
		if err != nil {
			logger.Warn("catalog_cache_disabled", "error", err)
		} else {
			cache = redisCache
			app.onClose(func() { _ = redisCache.Close() })
		}
	}

	app.Engine = classification.NewEngine(nil,
		classification.WithJitter(classification.UniformJitter{Spread: cfg.ClassificationJitter}))
	app.CatalogUC = usecase.NewCatalogUseCase(catalogRepo, cache, app.Engine, usecase.CatalogOptions{
		FallbackEnabled: cfg.CatalogFallbackEnabled,
		Logger:          logger,
		Observer:        opts.CatalogObserver,
	})
	app.AdminUC = usecase.NewCatalogAdminUseCase(catalogRepo, app.CatalogUC)

	if cfg.TaxonomyFile != "" {
		app.TaxonomyWatcher = watch.NewTaxonomyWatcher(cfg.TaxonomyFile, app.CatalogUC, 0, logger)
		if err := app.TaxonomyWatcher.LoadNow(); err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
	}

	if err := seedCatalog(ctx, cfg, app.AdminUC, logger); err != nil {
		return nil, err
	}
	if _, err := app.CatalogUC.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var publisher ports.EventPublisher
	if !opts.WithoutQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			QueueGroup:         cfg.NATSQueueGroup,
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.Queue = queue
		publisher = queue
		app.onClose(queue.Close)
	}

	reports, err := localfs.New(cfg.ReportStoragePath)
	if err != nil {
		return nil, fmt.Errorf("init report storage: %w", err)
	}
	app.Reports = reports

	app.SubmitUC = usecase.NewSubmitPetitionUseCase(petitionRepo, app.Engine, publisher, logger)
	app.OverrideUC = usecase.NewOverrideClassificationUseCase(petitionRepo, app.Engine, publisher, logger)
	app.ReadUC = usecase.NewReadPetitionUseCase(petitionRepo)
	app.AdvisorUC = usecase.NewClassificationAdvisorUseCase(app.Engine)
	app.AnalyticsUC = usecase.NewAnalyticsUseCase(petitionRepo, spreadsheet.NewRenderer(), reports)
	app.Extractor = letter.NewExtractor(cfg.LetterMaxBytes)

	if opts.WithSinks {
		notifier, graph, err := app.connectSinks(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.EventsUC = usecase.NewProcessPetitionEventUseCase(notifier, graph, logger)
	}

	ok = true
	return app, nil
}

// connectSinks returns nil interfaces for integrations left unconfigured.
func (a *App) connectSinks(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Notifier, ports.RoutingGraph, error) {
	var notifier ports.Notifier
	if cfg.SlackWebhookURL != "" {
		notifier = slack.New(cfg.SlackWebhookURL, slack.Options{
			Channel:         cfg.SlackChannel,
			PetitionBaseURL: cfg.PetitionConsoleURL,
		})
	} else {
		logger.Info("slack_alerts_disabled")
	}

	var graph ports.RoutingGraph
	if cfg.Neo4jURL != "" {
		g, err := neo4j.Connect(ctx, cfg.Neo4jURL, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect neo4j: %w", err)
		}
		a.onClose(func() { _ = g.Close(context.Background()) })
		if err := g.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure neo4j schema: %w", err)
		}
		graph = g
	} else {
		logger.Info("routing_graph_disabled")
	}
	return notifier, graph, nil
}

func seedCatalog(ctx context.Context, cfg config.Config, admin ports.CatalogAdmin, logger *slog.Logger) error {
	if !cfg.SeedCatalogOnStart {
		return nil
	}
	snapshot, err := seed.Load()
	if err != nil {
		return fmt.Errorf("load seed catalog: %w", err)
	}
	seeded, err := admin.Seed(ctx, snapshot)
	if err != nil {
		logger.Warn("catalog_seed_failed", "error", err)
		return nil
	}
	if seeded {
		logger.Info("catalog_seeded", "departments", len(snapshot.Departments), "categories", len(snapshot.Categories))
	}
	return nil
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
