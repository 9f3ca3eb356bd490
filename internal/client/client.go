// Package client abstracts the model backends behind a small completion
// and streaming interface.
package client

import (
	"context"

	"google.golang.org/genai"

	"gozen/internal/memory"
)

// Request is one model invocation: system preamble, ordered messages, and
// the tool schemas the model may call. Tool choice is always automatic.
type Request struct {
	System      string
	Messages    []memory.Message
	Tools       []*genai.FunctionDeclaration
	Temperature float64
	MaxTokens   int
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Response is a complete non-streaming model answer: either tool calls or
// finished text, with token accounting.
type Response struct {
	Text         string
	ToolCalls    []ToolCall
	InputTokens  int
	OutputTokens int
}

// HasToolCalls reports whether the model requested tool invocations.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Chunk is one increment of a streaming response.
type Chunk struct {
	Text string
	Err  error
	Done bool
}

// StreamingResponse delivers text deltas in order until the stream closes.
type StreamingResponse struct {
	Chunks <-chan Chunk
}

// Collect drains the stream into the concatenated final text.
func (s *StreamingResponse) Collect() (string, error) {
	var text string
	for chunk := range s.Chunks {
		if chunk.Err != nil {
			return text, chunk.Err
		}
		text += chunk.Text
	}
	return text, nil
}

// Client is a model backend.
type Client interface {
	// Complete sends the request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends the request and yields text deltas as they arrive.
	// Tool schemas are ignored in streaming mode.
	Stream(ctx context.Context, req Request) (*StreamingResponse, error)

	// Model returns the backend model identifier.
	Model() string

	// Close releases backend resources.
	Close() error
}
