// Package llm wraps the Anthropic API behind a small completion interface.
// Callers treat it as best-effort: any failure or timeout falls back to
// template responses, never to an error surfaced to the end user.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fieldserve/fieldserve/internal/config"
)

const requestTimeout = 10 * time.Second

// Completer produces a single completion for a system prompt and user prompt.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client calls the Anthropic messages API.
type Client struct {
	apiKey string
	model  string
}

// NewClient builds a client from configuration. A missing API key yields a
// disabled client, which callers must check via Enabled.
func NewClient(cfg *config.Config) *Client {
	return &Client{apiKey: cfg.AnthropicAPIKey, model: cfg.AnthropicModel}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Complete sends one prompt and returns the first text block of the reply.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm: not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("llm: no text content in response")
}
