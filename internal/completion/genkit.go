package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/koopa0/ragapi/internal/log"
)

// GenkitClient implements Client on top of a Genkit model.
//
// Tool requests are returned to the caller instead of being executed by
// the framework, so the orchestrator owns the tool loop.
//
// A rate limiter smooths request bursts against the hosted service.
// GenkitClient is safe for concurrent use.
type GenkitClient struct {
	g       *genkit.Genkit
	model   string // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	limiter *rate.Limiter
	logger  log.Logger
}

// NewGenkitClient creates a completion client for the given model.
// limiter may be nil to disable rate limiting (tests).
func NewGenkitClient(g *genkit.Genkit, model string, limiter *rate.Limiter, logger log.Logger) (*GenkitClient, error) {
	if g == nil {
		return nil, errors.New("genkit instance is required")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &GenkitClient{
		g:       g,
		model:   model,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Complete performs one model round trip.
func (c *GenkitClient) Complete(ctx context.Context, req Request) (*Result, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("completion request has no messages")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(c.model),
		ai.WithMessages(req.Messages...),
	}
	if len(req.Tools) > 0 {
		opts = append(opts,
			ai.WithTools(req.Tools...),
			// Surface tool requests to the caller; the orchestrator runs
			// the tool and feeds the result back itself.
			ai.WithReturnToolRequests(true),
		)
	}

	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	result := &Result{
		Text:         resp.Text(),
		Message:      resp.Message,
		ToolRequests: resp.ToolRequests(),
	}

	c.logger.Debug("completion finished",
		"model", c.model,
		"tool_requests", len(result.ToolRequests),
	)

	return result, nil
}
