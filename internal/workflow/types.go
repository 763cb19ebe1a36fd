package workflow

// Message roles accepted in incoming requests. Matching is
// case-insensitive; unknown roles are skipped when building buffers,
// mirroring the upstream chat-history behavior.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of an incoming conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Step records one tool invocation performed during the agentic flow.
type Step struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Result is the orchestrator's output envelope. Content is non-empty on
// success; Diagnostics holds one record per tool invocation, in
// invocation order (always empty for the static flow).
type Result struct {
	Content     string `json:"content"`
	Diagnostics []Step `json:"diagnostics"`
}
