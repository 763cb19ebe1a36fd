package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/ragapi/internal/completion"
	"github.com/koopa0/ragapi/internal/retrieval"
)

func TestRunStatic_ExactlyTwoCompletionCalls(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter replacement"),
		answerResult("Use filter OF-123 [manual.pdf]."),
	}}
	searcher := &mockSearcher{sources: []retrieval.Source{
		{Name: "manual.pdf", Content: "The oil filter part number is OF-123."},
	}}
	o := newTestOrchestrator(t, client, searcher)

	res, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter does my generator need?"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls())
	assert.Contains(t, res.Content, "OF-123")
	assert.Contains(t, res.Content, "[manual.pdf]")
	assert.Empty(t, res.Diagnostics)
	assert.NotNil(t, res.Diagnostics)
}

func TestRunStatic_RefinedQueryDrivesSearch(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("generator oil filter part number"),
		answerResult("OF-123."),
	}}
	searcher := &mockSearcher{}
	o := newTestOrchestrator(t, client, searcher)

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "I have a G-500 generator."},
		{Role: RoleAssistant, Content: "Noted. How can I help?"},
		{Role: RoleUser, Content: "Which oil filter does it need?"},
	})
	require.NoError(t, err)

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "generator oil filter part number", searcher.queries[0])

	// The refinement call must carry the whole conversation after the
	// search instruction.
	first := client.requests[0]
	require.NotEmpty(t, first.Messages)
	assert.Equal(t, ai.RoleSystem, first.Messages[0].Role)
	assert.Len(t, first.Messages, 4)
	assert.Empty(t, first.Tools)
}

func TestRunStatic_SourcesInAnswerPrompt(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter"),
		answerResult("OF-123."),
	}}
	searcher := &mockSearcher{sources: []retrieval.Source{
		{Name: "manual.pdf", Content: "The oil filter part number is OF-123."},
	}}
	o := newTestOrchestrator(t, client, searcher)

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
	})
	require.NoError(t, err)

	second := client.requests[1]
	text := lastUserText(t, second)
	assert.Contains(t, text, "<source><name>manual.pdf</name>")
	assert.Contains(t, text, "OF-123")
	assert.Contains(t, text, "Question: Which oil filter?")
	assert.Empty(t, second.Tools)
}

func TestRunStatic_EmptyInput(t *testing.T) {
	client := &mockClient{}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	_, err := o.RunStatic(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, client.calls(), "no external call for invalid input")
}

func TestRunStatic_TrailingAssistantTurn(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter"),
		answerResult("OF-123."),
	}}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	// Any non-empty list gets the two-call treatment; the last message's
	// literal content is the question regardless of its role.
	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
		{Role: RoleAssistant, Content: "Let me check the manual."},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls())
	assert.Contains(t, lastUserText(t, client.requests[1]),
		"Question: Let me check the manual.")
}

func TestRunStatic_RetrievalFailureDegrades(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter"),
		answerResult("I could not find that in the sources."),
	}}
	searcher := &mockSearcher{err: errors.New("connection refused")}
	o := newTestOrchestrator(t, client, searcher)

	res, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
	})
	require.NoError(t, err, "retrieval outage must not fail the flow")

	assert.Equal(t, 2, client.calls())
	assert.Contains(t, lastUserText(t, client.requests[1]), retrieval.NoSourcesMarker)
	assert.NotEmpty(t, res.Content)
}

func TestRunStatic_ZeroSources(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("unicorn maintenance"),
		answerResult("The sources contain nothing about that."),
	}}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "How do I maintain a unicorn?"},
	})
	require.NoError(t, err)
	assert.Contains(t, lastUserText(t, client.requests[1]), retrieval.NoSourcesMarker)
}

func TestRunStatic_EmptyRefinementFallsBack(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("   "),
		answerResult("OF-123."),
	}}
	searcher := &mockSearcher{}
	o := newTestOrchestrator(t, client, searcher)

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
	})
	require.NoError(t, err)

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "Which oil filter?", searcher.queries[0])
}

func TestRunStatic_CompletionFailure(t *testing.T) {
	client := &mockClient{err: errors.New("model unavailable")}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
	})
	require.ErrorIs(t, err, ErrUpstreamService)
}

func TestRunStatic_EmptyAnswer(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter"),
		answerResult(""),
	}}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: RoleUser, Content: "Which oil filter?"},
	})
	require.ErrorIs(t, err, ErrUpstreamService)
}

func TestRunStatic_MixedCaseRoles(t *testing.T) {
	client := &mockClient{results: []*completion.Result{
		answerResult("oil filter"),
		answerResult("OF-123."),
	}}
	o := newTestOrchestrator(t, client, &mockSearcher{})

	_, err := o.RunStatic(context.Background(), []Message{
		{Role: "User", Content: "Which oil filter?"},
	})
	require.NoError(t, err)
	assert.Equal(t, ai.RoleUser, client.requests[0].Messages[1].Role)
}
