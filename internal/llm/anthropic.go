package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const anthropicDefaultModel = "claude-3-5-haiku-latest"

// AnthropicProvider implements ChatProvider via the Anthropic messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg ChatConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Anthropic")
	}

	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	opts := []anthropic.ClientOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  model,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// SupportsJSONMode is false: the messages API has no structured-output switch,
// so JSON-shaped calls are not guaranteed to parse.
func (p *AnthropicProvider) SupportsJSONMode() bool {
	return false
}

func (p *AnthropicProvider) messagesRequest(req ChatRequest) anthropic.MessagesRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		System:    req.System,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.User),
		},
	}
}

// StreamChat streams message deltas in generation order.
func (p *AnthropicProvider) StreamChat(ctx context.Context, req ChatRequest, onDelta func(string)) error {
	_, err := p.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: p.messagesRequest(req),
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text != nil && *data.Delta.Text != "" {
				onDelta(*data.Delta.Text)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic stream error: %w", err)
	}
	return nil
}

// Complete performs a single blocking completion.
func (p *AnthropicProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := p.client.CreateMessages(ctx, p.messagesRequest(req))
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic returned no content")
	}
	return resp.Content[0].GetText(), nil
}
