// Package app provides application initialization and dependency wiring.
//
// App is the container that owns every long-lived component: the Genkit
// instance, the database pool, the retrieval store, the completion
// client, and the orchestrator the HTTP layer serves.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/ragapi/internal/config"
	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/retrieval"
	"github.com/koopa0/ragapi/internal/workflow"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Store        *retrieval.Store
	Orchestrator *workflow.Orchestrator

	// Lifecycle management
	otelCleanup func()
	cancel      context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}

	// Flush pending trace spans last.
	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
