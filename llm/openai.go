package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// defaultTemperature keeps the analysis deterministic enough to parse.
const defaultTemperature = 0.1

// OpenAIModel implements Model using the OpenAI chat completions API.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIOption configures an OpenAIModel.
type OpenAIOption func(*OpenAIModel)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) OpenAIOption {
	return func(m *OpenAIModel) {
		m.temperature = t
	}
}

// NewOpenAIModel creates a chat model backed by the OpenAI API.
// baseURL may be empty to use the public endpoint.
func NewOpenAIModel(apiKey, model, baseURL string, opts ...OpenAIOption) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	m := &OpenAIModel{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Complete sends the system and user prompts and returns the model's reply.
func (m *OpenAIModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed for %s: %w", m.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion for %s returned no choices", m.model)
	}

	return resp.Choices[0].Message.Content, nil
}

// Name returns the model identifier.
func (m *OpenAIModel) Name() string {
	return m.model
}
