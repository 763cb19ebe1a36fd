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

// RunStatic executes the static RAG flow: refine a search query from the
// conversation, retrieve sources, then answer grounded in them.
//
// Exactly two completion calls are made for any valid input. A retrieval
// failure degrades to zero sources and the flow continues; completion
// failures surface as ErrUpstreamService.
func (o *Orchestrator) RunStatic(ctx context.Context, messages []Message) (*Result, error) {
	if err := validateInput(messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	// The literal content of the last message is the question, whatever
	// its role.
	last := messages[len(messages)-1]

	// Step 1: distill the conversation into a search query.
	query, err := o.refineQuery(ctx, messages)
	if err != nil {
		return nil, err
	}

	// Step 2: retrieve. Failures degrade to zero sources so a search
	// outage never takes the answer path down with it.
	sources, err := o.searcher.Search(ctx, query, o.topK)
	if err != nil {
		o.logger.Warn("retrieval degraded, continuing without sources", "error", err)
		sources = nil
	}
	block := retrieval.FormatSources(sources)

	// Step 3: answer grounded in the retrieved sources.
	answerTmpl, err := o.prompts.Read(prompt.RAGAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: reading answer template: %v", ErrUpstreamService, err)
	}

	buf := conversation.New()
	buf.AddSystem(answerTmpl)
	appendTurns(buf, messages[:len(messages)-1])
	buf.AddUser("Sources:\n\n" + block + "\n\nQuestion: " + last.Content)

	res, err := o.client.Complete(ctx, completion.Request{Messages: buf.Messages()})
	if err != nil {
		return nil, fmt.Errorf("%w: generating answer: %v", ErrUpstreamService, err)
	}

	answer := strings.TrimSpace(res.Text)
	if answer == "" {
		return nil, fmt.Errorf("%w: model returned an empty answer", ErrUpstreamService)
	}

	o.logger.Debug("static flow completed", "sources", len(sources))

	return &Result{Content: answer, Diagnostics: []Step{}}, nil
}

// refineQuery runs the query-refinement completion call: the search
// instruction template plus all prior user/assistant turns.
func (o *Orchestrator) refineQuery(ctx context.Context, messages []Message) (string, error) {
	searchTmpl, err := o.prompts.Read(prompt.RAGSearch)
	if err != nil {
		return "", fmt.Errorf("%w: reading search template: %v", ErrUpstreamService, err)
	}

	buf := conversation.New()
	buf.AddSystem(searchTmpl)
	appendTurns(buf, messages)

	res, err := o.client.Complete(ctx, completion.Request{Messages: buf.Messages()})
	if err != nil {
		return "", fmt.Errorf("%w: refining search query: %v", ErrUpstreamService, err)
	}

	query := strings.TrimSpace(res.Text)
	if query == "" {
		// Fall back to the literal question rather than searching for
		// nothing.
		query = messages[len(messages)-1].Content
	}

	return query, nil
}
