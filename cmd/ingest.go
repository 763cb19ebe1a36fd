package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koopa0/ragapi/internal/app"
	"github.com/koopa0/ragapi/internal/config"
	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/retrieval"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <files...>",
		Short: "Embed and store documents in the vector store",
		Long: `Ingest reads each file, embeds its content, and upserts it into the
document store keyed by file name. Re-ingesting a file replaces its
previous content and embedding.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(args)
		},
	}
}

func runIngest(paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.Config{})

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		name := filepath.Base(path)
		doc := retrieval.Document{
			ID:      name, // keyed by file name so re-ingesting replaces
			Name:    name,
			Content: string(data),
		}
		if err := a.Store.Add(ctx, doc); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		logger.Info("ingested document", "name", name, "bytes", len(data))
	}

	count, err := a.Store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	fmt.Printf("Ingested %d file(s); store now holds %d document(s).\n", len(paths), count)

	return nil
}
