package workflow

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/retrieval"
)

// RetrievalToolName is the single tool the agentic flow exposes.
const RetrievalToolName = "get_sources"

// retrievalToolDescription tells the model when to call the tool.
const retrievalToolDescription = "Get relevant source information based on the search query"

// Tool pairs a declaration passed to the completion service with the
// function that executes it. Execution stays in the orchestrator: the
// completion service only decides, it never runs anything.
type Tool struct {
	// Declaration is the tool reference handed to the completion call.
	Declaration ai.ToolRef

	// Run executes the tool with the arguments supplied by the model.
	Run func(ctx context.Context, args map[string]any) (string, error)
}

// Registry maps tool names to tools. Built once at orchestrator
// construction; read-only afterwards, safe for concurrent use.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(t Tool) error {
	if t.Declaration == nil {
		return fmt.Errorf("tool declaration is required")
	}
	name := t.Declaration.Name()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Run == nil {
		return fmt.Errorf("tool %q has no run function", name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Refs returns the declarations for a completion call, in registration
// order.
func (r *Registry) Refs() []ai.ToolRef {
	refs := make([]ai.ToolRef, len(r.order))
	for i, name := range r.order {
		refs[i] = r.tools[name].Declaration
	}
	return refs
}

// retrievalToolInput is the parameter schema the model sees for the
// retrieval tool; genkit derives the JSON schema from the struct tags.
type retrievalToolInput struct {
	Query string `json:"query" jsonschema:"description=search query"`
}

// NewRetrievalTool declares vector search as an invocable tool.
//
// The genkit definition exists so the declaration (name, description,
// parameter schema) reaches the model; the orchestrator executes the
// searches itself, so the definition's own handler just delegates to the
// same search path.
func NewRetrievalTool(g *genkit.Genkit, searcher Searcher, topK int, logger log.Logger) Tool {
	run := func(ctx context.Context, args map[string]any) (string, error) {
		query, _ := args["query"].(string)
		sources, err := searcher.Search(ctx, query, topK)
		if err != nil {
			return "", err
		}
		return retrieval.FormatSources(sources), nil
	}

	decl := genkit.DefineTool(g, RetrievalToolName, retrievalToolDescription,
		func(toolCtx *ai.ToolContext, input retrievalToolInput) (string, error) {
			return run(toolCtx.Context, map[string]any{"query": input.Query})
		},
	)

	return Tool{Declaration: decl, Run: run}
}
