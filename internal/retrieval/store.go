package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/koopa0/ragapi/internal/log"
)

// Document is a chunk to be indexed into the store.
type Document struct {
	ID      string // Empty → a random UUID is assigned
	Name    string // Source name, e.g. the file the chunk came from
	Content string
}

// Store performs vector similarity search over PostgreSQL + pgvector.
// Query and document embeddings are generated with the configured
// embedder at call time.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   log.Logger
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool, embedder ai.Embedder, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, errors.New("connection pool is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	return &Store{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Search returns up to topK sources ordered by cosine distance to the
// query embedding, most similar first. An empty result is valid.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Source, error) {
	if topK <= 0 {
		topK = 5
	}

	embedding, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT name, content FROM documents ORDER BY embedding <=> $1 LIMIT $2`,
		pgvector.NewVector(embedding), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Name, &src.Content); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}

	s.logger.Debug("vector search completed", "query_len", len(query), "results", len(sources))

	return sources, nil
}

// Add embeds and upserts a document chunk.
func (s *Store) Add(ctx context.Context, doc Document) error {
	if doc.Content == "" {
		return errors.New("document content is empty")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	embedding, err := s.embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embedding document %q: %w", doc.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, name, content, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
		doc.ID, doc.Name, doc.Content, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.ID, err)
	}

	return nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// embed generates the embedding vector for a single text.
func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, errors.New("embedder returned no embedding")
	}
	return resp.Embeddings[0].Embedding, nil
}
