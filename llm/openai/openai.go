// Package openai implements llm.Client on top of the OpenAI Chat Completions
// API. Any OpenAI-compatible endpoint works through the base URL option; the
// workflows default to OpenRouter, matching their original deployment.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/playbook-agents/playbook/config"
	"github.com/playbook-agents/playbook/llm"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "mistralai/mistral-small-3.1-24b-instruct:free"

// Options configure the adapter.
type Options struct {
	Model   string
	BaseURL string
	APIKey  string
}

// Client adapts the OpenAI SDK to llm.Client.
type Client struct {
	client openai.Client
	model  string
}

var _ llm.Client = (*Client)(nil)

// New constructs a Client. The API key is resolved once, from the option or
// the OPENROUTER_API_KEY environment key, and a missing key is a construction
// error — the gateway must not exist in a half-initialized state.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:   config.Get("LLM_MODEL", DefaultModel),
		BaseURL: config.Get("LLM_BASE_URL", DefaultBaseURL),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		key, err := config.Require("OPENROUTER_API_KEY")
		if err != nil {
			return nil, err
		}
		opts.APIKey = key
	}
	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
	)
	return &Client{client: client, model: opts.Model}, nil
}

// WithModel overrides the completion model.
func WithModel(model string) func(o *Options) {
	return func(o *Options) { o.Model = model }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) func(o *Options) {
	return func(o *Options) { o.BaseURL = url }
}

// WithAPIKey supplies the credential explicitly instead of via environment.
func WithAPIKey(key string) func(o *Options) {
	return func(o *Options) { o.APIKey = key }
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai: empty completion content")
	}
	return content, nil
}

// ModelID implements llm.Client.
func (c *Client) ModelID() string { return c.model }
