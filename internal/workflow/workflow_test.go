package workflow

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/koopa0/ragapi/internal/completion"
	"github.com/koopa0/ragapi/internal/conversation"
	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/prompt"
	"github.com/koopa0/ragapi/internal/retrieval"
)

// mockClient implements completion.Client with scripted results. Each
// call consumes the next result; requests are recorded for inspection.
type mockClient struct {
	results  []*completion.Result
	err      error
	requests []completion.Request
}

func (m *mockClient) Complete(ctx context.Context, req completion.Request) (*completion.Result, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return &completion.Result{Text: "default answer"}, nil
	}
	res := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return res, nil
}

func (m *mockClient) calls() int { return len(m.requests) }

// mockSearcher implements Searcher with fixed sources or a fixed error.
type mockSearcher struct {
	sources []retrieval.Source
	err     error
	queries []string
}

func (m *mockSearcher) Search(ctx context.Context, query string, topK int) ([]retrieval.Source, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.sources, nil
}

// fakeToolRef satisfies ai.ToolRef without a genkit registry.
type fakeToolRef string

func (f fakeToolRef) Name() string { return string(f) }

var _ ai.ToolRef = fakeToolRef("")

// testRetrievalTool builds the retrieval tool against a Searcher without
// going through genkit.DefineTool.
func testRetrievalTool(searcher Searcher, topK int) Tool {
	return Tool{
		Declaration: fakeToolRef(RetrievalToolName),
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			sources, err := searcher.Search(ctx, query, topK)
			if err != nil {
				return "", err
			}
			return retrieval.FormatSources(sources), nil
		},
	}
}

// newTestOrchestrator wires an Orchestrator with mocks.
func newTestOrchestrator(t *testing.T, client completion.Client, searcher Searcher) *Orchestrator {
	t.Helper()

	registry := NewRegistry()
	if err := registry.Register(testRetrievalTool(searcher, 5)); err != nil {
		t.Fatal(err)
	}

	o, err := New(Config{
		Client:    client,
		Searcher:  searcher,
		Prompts:   prompt.NewStore(""),
		Tools:     registry,
		Logger:    log.NewNop(),
		TopK:      5,
		MaxRounds: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

// answerResult builds a final-answer completion result.
func answerResult(text string) *completion.Result {
	return &completion.Result{
		Text:    text,
		Message: ai.NewModelMessage(ai.NewTextPart(text)),
	}
}

// toolRequestResult builds a completion result asking for one tool call.
func toolRequestResult(name, query, ref string) *completion.Result {
	req := &ai.ToolRequest{
		Name:  name,
		Input: map[string]any{"query": query},
		Ref:   ref,
	}
	return &completion.Result{
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewToolRequestPart(req)},
		},
		ToolRequests: []*ai.ToolRequest{req},
	}
}

// lastUserText returns the text of the final user message of a request.
func lastUserText(t *testing.T, req completion.Request) string {
	t.Helper()
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == ai.RoleUser {
			return conversation.Text(req.Messages[i])
		}
	}
	t.Fatal("request has no user message")
	return ""
}

func TestNew_Validation(t *testing.T) {
	searcher := &mockSearcher{}
	registry := NewRegistry()
	prompts := prompt.NewStore("")

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing client", Config{Searcher: searcher, Prompts: prompts, Tools: registry, Logger: log.NewNop()}},
		{"missing searcher", Config{Client: &mockClient{}, Prompts: prompts, Tools: registry, Logger: log.NewNop()}},
		{"missing prompts", Config{Client: &mockClient{}, Searcher: searcher, Tools: registry, Logger: log.NewNop()}},
		{"missing tools", Config{Client: &mockClient{}, Searcher: searcher, Prompts: prompts, Logger: log.NewNop()}},
		{"missing logger", Config{Client: &mockClient{}, Searcher: searcher, Prompts: prompts, Tools: registry}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() succeeded with incomplete config")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	o := newTestOrchestrator(t, &mockClient{}, &mockSearcher{})
	if o.topK != 5 || o.maxRounds != 3 {
		t.Errorf("unexpected config: topK=%d maxRounds=%d", o.topK, o.maxRounds)
	}

	registry := NewRegistry()
	if err := registry.Register(testRetrievalTool(&mockSearcher{}, 5)); err != nil {
		t.Fatal(err)
	}
	zero, err := New(Config{
		Client:   &mockClient{},
		Searcher: &mockSearcher{},
		Prompts:  prompt.NewStore(""),
		Tools:    registry,
		Logger:   log.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if zero.topK != 5 {
		t.Errorf("topK default = %d, want 5", zero.topK)
	}
	if zero.maxRounds != 5 {
		t.Errorf("maxRounds default = %d, want 5", zero.maxRounds)
	}
}
