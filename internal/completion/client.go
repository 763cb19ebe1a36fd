// Package completion wraps the hosted chat-completion service behind a
// small client interface.
//
// The orchestrator treats completion as a black box: given a message
// buffer and an optional tool set, the service returns either a final
// text answer or one or more tool-invocation requests. Which of the two
// happens is entirely the service's decision.
package completion

import (
	"context"

	"github.com/firebase/genkit/go/ai"
)

// Request is a single completion call.
type Request struct {
	// Messages is the ordered conversation buffer. Must not be empty.
	Messages []*ai.Message

	// Tools declares the capabilities the model may request. When empty,
	// the result is always a final answer.
	Tools []ai.ToolRef
}

// Result is the outcome of a completion call: either a final answer
// (Text set, ToolRequests empty) or a set of tool-invocation requests
// the caller must execute and feed back.
type Result struct {
	// Text is the model's text output. May be empty when the model chose
	// to request tools instead of answering.
	Text string

	// Message is the complete model message, including tool-request
	// parts. It must be appended to the buffer verbatim before tool
	// results are fed back.
	Message *ai.Message

	// ToolRequests are the tool invocations the model asked for, in
	// request order. Empty for a final answer.
	ToolRequests []*ai.ToolRequest
}

// Client is the completion service contract consumed by the orchestrator.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}
