// Package llm talks to an OpenAI-compatible chat completion API.
package llm

import "context"

// LLMClient defines the interface for chat completion calls.
type LLMClient interface {
	// CreateChatCompletion sends one non-streaming chat completion request.
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure Client implements LLMClient interface.
var _ LLMClient = (*Client)(nil)
