// Package conversation provides the request-scoped message buffer passed
// to completion calls.
//
// A Buffer is an ordered, append-only sequence of role-tagged messages.
// It is constructed fresh per request and discarded when the request
// ends; there is no cross-request persistence.
package conversation

import (
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// Buffer is an ordered sequence of messages for a single completion call.
//
// Convention: AddSystem is called at most once and before any other
// append. This mirrors the upstream chat-history contract and is not
// runtime-checked; callers must not violate it.
//
// Buffer is not safe for concurrent use. Each request owns its own.
type Buffer struct {
	messages []*ai.Message
}

// New creates an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// AddSystem appends the system instruction message.
func (b *Buffer) AddSystem(text string) {
	b.append(&ai.Message{
		Role:    ai.RoleSystem,
		Content: []*ai.Part{ai.NewTextPart(text)},
	})
}

// AddUser appends a user message.
func (b *Buffer) AddUser(text string) {
	b.append(ai.NewUserMessage(ai.NewTextPart(text)))
}

// AddAssistant appends an assistant (model) message.
func (b *Buffer) AddAssistant(text string) {
	b.append(ai.NewModelMessage(ai.NewTextPart(text)))
}

// AddToolResult appends a tool-result message. ref correlates the result
// with the tool request that produced it and may be empty.
func (b *Buffer) AddToolResult(toolName, ref, output string) {
	b.append(&ai.Message{
		Role: ai.RoleTool,
		Content: []*ai.Part{ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   toolName,
			Ref:    ref,
			Output: output,
		})},
	})
}

// AddMessage appends a complete message as-is. Used for the model's own
// tool-request message in the agentic loop, which must be echoed back to
// the model verbatim.
func (b *Buffer) AddMessage(msg *ai.Message) {
	b.append(msg)
}

// Messages returns the buffered messages in insertion order. The returned
// slice is the buffer's backing store; callers must not mutate it.
func (b *Buffer) Messages() []*ai.Message {
	return b.messages
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	return len(b.messages)
}

func (b *Buffer) append(msg *ai.Message) {
	b.messages = append(b.messages, msg)
}

// Text extracts the plain text content of a message, concatenating all
// text parts in order.
func Text(msg *ai.Message) string {
	var sb strings.Builder
	for _, part := range msg.Content {
		if part.IsText() {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
