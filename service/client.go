package service

import (
	"context"

	"github.com/mochi-chat/mochi/core/chat"
)

// ChatRequest is one completion request to the model runtime.
type ChatRequest struct {
	Model    string
	Messages []chat.Message

	// Options carries runtime tuning parameters such as num_ctx. A nil
	// map lets the runtime choose its own defaults.
	Options map[string]any
}

// ChatResult is the runtime's completed response. EvalCount and
// PromptEvalCount are nil when the runtime did not report token usage.
type ChatResult struct {
	Content         string
	EvalCount       *int
	PromptEvalCount *int
	ToolCalls       []chat.ToolCall
}

// ModelClient is the wire client to the external model runtime. The
// service drives it one completed turn at a time; streaming, retries,
// and transport concerns live behind this interface.
type ModelClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}
