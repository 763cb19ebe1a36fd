package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/koopa0/ragapi/db"
	"github.com/koopa0/ragapi/internal/completion"
	"github.com/koopa0/ragapi/internal/config"
	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/observability"
	"github.com/koopa0/ragapi/internal/prompt"
	"github.com/koopa0/ragapi/internal/retrieval"
	"github.com/koopa0/ragapi/internal/workflow"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	store, err := retrieval.NewStore(pool, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating retrieval store: %w", err)
	}
	a.Store = store

	client, err := completion.NewGenkitClient(g, cfg.FullModelName(),
		rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst), logger)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	registry := workflow.NewRegistry()
	if err := registry.Register(workflow.NewRetrievalTool(g, store, cfg.TopK, logger)); err != nil {
		return nil, fmt.Errorf("registering retrieval tool: %w", err)
	}

	orchestrator, err := workflow.New(workflow.Config{
		Client:    client,
		Searcher:  store,
		Prompts:   prompt.NewStore(cfg.PromptDir),
		Tools:     registry,
		Logger:    logger,
		TopK:      cfg.TopK,
		MaxRounds: cfg.MaxRounds,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	a.Orchestrator = orchestrator

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// provideOtelShutdown sets up trace export before Genkit initialization.
// Must run before provideGenkit so the TracerProvider is ready when the
// first span is created.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Logger:      logger,
	})
	if err != nil {
		logger.Warn("setting up tracing, continuing without it", "error", err)
		return func() {}
	}

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideGenkit initializes Genkit with the Google AI plugin. The plugin
// reads GEMINI_API_KEY from the environment.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}

	logger.Info("initialized genkit", "model", cfg.ModelName, "embedder", cfg.EmbedderModel)
	return g, nil
}

// provideDBPool runs migrations and creates a PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
