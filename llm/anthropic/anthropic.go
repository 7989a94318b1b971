// Package anthropic implements llm.Client on top of the Anthropic Messages
// API, as an alternative gateway to the default OpenAI-compatible one.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/playbook-agents/playbook/config"
	"github.com/playbook-agents/playbook/llm"
)

// Options configure the adapter.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Client adapts the Anthropic SDK to llm.Client.
type Client struct {
	client anthropic.Client
	opts   Options
}

var _ llm.Client = (*Client)(nil)

// New constructs a Client. The API key is resolved once from the option or
// ANTHROPIC_API_KEY; a missing key fails construction.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		key, err := config.Require("ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		opts.APIKey = key
	}
	client := anthropic.NewClient(option.WithAPIKey(opts.APIKey))
	return &Client{client: client, opts: opts}, nil
}

// WithModel overrides the completion model.
func WithModel(model anthropic.Model) func(o *Options) {
	return func(o *Options) { o.Model = model }
}

// WithAPIKey supplies the credential explicitly instead of via environment.
func WithAPIKey(key string) func(o *Options) {
	return func(o *Options) { o.APIKey = key }
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: completion failed: %w", err)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty completion content")
	}
	return b.String(), nil
}

// ModelID implements llm.Client.
func (c *Client) ModelID() string { return string(c.opts.Model) }
