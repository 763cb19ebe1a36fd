package workflow

import "errors"

// Sentinel errors for workflow execution. The transport layer maps these
// to HTTP status codes with errors.Is().
var (
	// ErrInvalidRequest indicates malformed or empty input. Client error,
	// not retried; no external call is made.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamService indicates the completion service failed or
	// returned an unusable result. Not retried automatically.
	ErrUpstreamService = errors.New("upstream service failure")

	// ErrUnsupportedTool indicates the model requested a tool that is not
	// registered. Fatal for the request.
	ErrUnsupportedTool = errors.New("unsupported tool")

	// ErrRoundLimitExceeded indicates the agentic loop hit its round
	// bound without producing a final answer.
	ErrRoundLimitExceeded = errors.New("tool round limit exceeded")
)
