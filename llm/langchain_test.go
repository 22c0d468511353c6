package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// fakeLangchainModel implements llms.Model for the adapter tests.
type fakeLangchainModel struct {
	lastMessages []llms.MessageContent
	response     *llms.ContentResponse
	err          error
}

func (f *fakeLangchainModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.lastMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeLangchainModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestLangchainComplete(t *testing.T) {
	fake := &fakeLangchainModel{
		response: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "robotics"}},
		},
	}
	m := NewLangchainModel(fake, "claude-3-haiku")
	assert.Equal(t, "claude-3-haiku", m.Name())

	resp, err := m.Complete(context.Background(), "You are an analyst.", "Classify Acme.")
	require.NoError(t, err)
	assert.Equal(t, "robotics", resp)

	require.Len(t, fake.lastMessages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, fake.lastMessages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.lastMessages[1].Role)
}

func TestLangchainCompleteError(t *testing.T) {
	m := NewLangchainModel(&fakeLangchainModel{err: errors.New("backend down")}, "any")

	_, err := m.Complete(context.Background(), "", "Hello")
	assert.ErrorContains(t, err, "backend down")
}

func TestLangchainCompleteNoChoices(t *testing.T) {
	m := NewLangchainModel(&fakeLangchainModel{response: &llms.ContentResponse{}}, "any")

	_, err := m.Complete(context.Background(), "", "Hello")
	assert.ErrorContains(t, err, "no choices")
}
