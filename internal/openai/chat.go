package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is used for summarization, metadata extraction, scoring
// and LLM classification unless a stage overrides it.
const DefaultChatModel = openai.GPT4oMini

// ChatAPI defines the interface for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatClient wraps the OpenAI chat completion API with the defaults the
// pipeline stages share.
type ChatClient struct {
	api       ChatAPI
	model     string
	maxTokens int
}

// ChatOption overrides a per-request parameter.
type ChatOption func(*openai.ChatCompletionRequest)

// WithModel overrides the model for a single request.
func WithModel(model string) ChatOption {
	return func(req *openai.ChatCompletionRequest) {
		if model != "" {
			req.Model = model
		}
	}
}

// WithMaxTokens overrides the completion token cap for a single request.
func WithMaxTokens(maxTokens int) ChatOption {
	return func(req *openai.ChatCompletionRequest) {
		if maxTokens > 0 {
			req.MaxTokens = maxTokens
		}
	}
}

// NewChatClient creates a ChatClient backed by the real OpenAI API.
func NewChatClient(apiKey, model string, maxTokens int) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{
		api:       openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

// NewChatClientWithAPI creates a ChatClient with an explicit API, used by
// tests to substitute a mock.
func NewChatClientWithAPI(api ChatAPI, model string, maxTokens int) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{
		api:       api,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends a system+user prompt pair and returns the assistant text.
// Temperature is pinned to zero: every caller wants reproducible output.
func (c *ChatClient) Complete(ctx context.Context, system, user string, opts ...ChatOption) (string, error) {
	if user == "" {
		return "", ErrEmptyText
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
