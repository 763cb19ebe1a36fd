// Package workflow implements the two RAG orchestration flows.
//
// The static flow always retrieves before answering: a first completion
// call distills the conversation into a search query, vector search
// fetches sources, and a second completion call answers from them.
//
// The agentic flow instead declares retrieval as an invocable tool and
// lets the completion service decide whether and when to call it,
// looping until a final answer is produced or the round bound is hit.
//
// All state is request-scoped; an Orchestrator holds only stateless
// client handles and is safe for concurrent use.
package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/koopa0/ragapi/internal/completion"
	"github.com/koopa0/ragapi/internal/conversation"
	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/prompt"
	"github.com/koopa0/ragapi/internal/retrieval"
)

// Searcher is the retrieval contract consumed by the orchestrator.
// Implementations must be safe to call concurrently and may return an
// empty result.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]retrieval.Source, error)
}

// Config contains all required parameters for the Orchestrator.
type Config struct {
	Client   completion.Client
	Searcher Searcher
	Prompts  *prompt.Store
	Tools    *Registry
	Logger   log.Logger

	TopK      int // Sources per retrieval call
	MaxRounds int // Agentic loop bound
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Client == nil {
		return errors.New("completion client is required")
	}
	if cfg.Searcher == nil {
		return errors.New("searcher is required")
	}
	if cfg.Prompts == nil {
		return errors.New("prompt store is required")
	}
	if cfg.Tools == nil {
		return errors.New("tool registry is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Orchestrator runs the static and agentic RAG flows.
type Orchestrator struct {
	client   completion.Client
	searcher Searcher
	prompts  *prompt.Store
	tools    *Registry
	logger   log.Logger

	topK      int
	maxRounds int
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 5
	}

	return &Orchestrator{
		client:    cfg.Client,
		searcher:  cfg.Searcher,
		prompts:   cfg.Prompts,
		tools:     cfg.Tools,
		logger:    cfg.Logger,
		topK:      topK,
		maxRounds: maxRounds,
	}, nil
}

// validateInput rejects empty message lists before any external call.
func validateInput(messages []Message) error {
	if len(messages) == 0 {
		return errors.New("message list is empty")
	}
	return nil
}

// appendTurns copies user and assistant turns into the buffer in order,
// skipping unknown roles.
func appendTurns(buf *conversation.Buffer, messages []Message) {
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case RoleUser:
			buf.AddUser(m.Content)
		case RoleAssistant:
			buf.AddAssistant(m.Content)
		}
	}
}
