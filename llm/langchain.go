package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangchainModel adapts a langchaingo llms.Model to the Model interface,
// so providers other than OpenAI can drive the workflow.
type LangchainModel struct {
	model llms.Model
	name  string
}

var _ Model = (*LangchainModel)(nil)

// NewLangchainModel wraps a langchaingo model. The name is only used for
// display and archiving.
func NewLangchainModel(model llms.Model, name string) *LangchainModel {
	return &LangchainModel{
		model: model,
		name:  name,
	}
}

// Complete sends the system and user prompts and returns the model's reply.
func (m *LangchainModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if system != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	resp, err := m.model.GenerateContent(ctx, messages, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", fmt.Errorf("generate content failed for %s: %w", m.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate content for %s returned no choices", m.name)
	}

	return resp.Choices[0].Content, nil
}

// Name returns the model identifier.
func (m *LangchainModel) Name() string {
	return m.name
}
