package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/koopa0/ragapi/internal/completion"
	"github.com/koopa0/ragapi/internal/conversation"
	"github.com/koopa0/ragapi/internal/prompt"
	"github.com/koopa0/ragapi/internal/retrieval"
)

// RunAgent executes the agentic RAG flow. Retrieval is declared as an
// invocable tool and the completion service decides per round whether to
// call it or answer. Each tool round appends the model's tool-request
// message and the tool result to the buffer, then asks the model again.
//
// The loop is bounded by MaxRounds: an external service that keeps
// requesting tools forever yields ErrRoundLimitExceeded instead of an
// unbounded loop. Tool execution failures are converted into an empty
// result set and fed back, never surfaced as fatal.
func (o *Orchestrator) RunAgent(ctx context.Context, messages []Message) (*Result, error) {
	if err := validateInput(messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	agentTmpl, err := o.prompts.Read(prompt.RAGAgent)
	if err != nil {
		return nil, fmt.Errorf("%w: reading agent template: %v", ErrUpstreamService, err)
	}

	buf := conversation.New()
	buf.AddSystem(agentTmpl)
	appendTurns(buf, messages)

	tools := o.tools.Refs()
	// Non-nil so zero tool rounds serialize as [], matching the static flow.
	steps := []Step{}

	for round := 0; round < o.maxRounds; round++ {
		res, err := o.client.Complete(ctx, completion.Request{
			Messages: buf.Messages(),
			Tools:    tools,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: agent round %d: %v", ErrUpstreamService, round+1, err)
		}

		// Final answer: terminal state.
		if len(res.ToolRequests) == 0 {
			answer := strings.TrimSpace(res.Text)
			if answer == "" {
				return nil, fmt.Errorf("%w: model returned an empty answer", ErrUpstreamService)
			}
			o.logger.Debug("agentic flow completed", "rounds", len(steps))
			return &Result{Content: answer, Diagnostics: steps}, nil
		}

		// Tool round: execute each request and feed the results back.
		buf.AddMessage(res.Message)
		for _, req := range res.ToolRequests {
			tool, ok := o.tools.Lookup(req.Name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnsupportedTool, req.Name)
			}

			args, _ := req.Input.(map[string]any)
			output, err := tool.Run(ctx, args)
			if err != nil {
				o.logger.Warn("tool execution degraded, returning empty result",
					"tool", req.Name, "error", err)
				output = retrieval.NoSourcesMarker
			}

			buf.AddToolResult(req.Name, req.Ref, output)
			steps = append(steps, Step{Name: req.Name, Content: output})
		}
	}

	return nil, fmt.Errorf("%w: no final answer after %d rounds", ErrRoundLimitExceeded, o.maxRounds)
}
