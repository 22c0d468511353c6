// Package llm abstracts the chat models driving the analysis workflow.
// The OpenAI client is the primary implementation; any langchaingo model
// can be plugged in through the adapter.
package llm

import "context"

// Model is a chat model that answers a single prompt under a system role.
type Model interface {
	// Complete sends the system and user prompts and returns the model's reply.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Name returns the model identifier, e.g. "gpt-4o-mini".
	Name() string
}
