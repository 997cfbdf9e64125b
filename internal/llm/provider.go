package llm

import (
	"context"
	"fmt"
)

// ChatRequest is a single prompt exchange. JSONMode asks the backend to
// return a JSON object (only honored by providers that support it).
type ChatRequest struct {
	System    string
	User      string
	JSONMode  bool
	MaxTokens int
}

// ChatProvider abstracts the chat/completion backend.
//
// StreamChat delivers answer fragments through onDelta in generation order and
// returns once the upstream stream ends; an abnormal termination is reported
// through the returned error after all received fragments were delivered.
type ChatProvider interface {
	Name() string
	StreamChat(ctx context.Context, req ChatRequest, onDelta func(string)) error
	Complete(ctx context.Context, req ChatRequest) (string, error)
	SupportsJSONMode() bool
}

// ChatConfig holds chat provider configuration
type ChatConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// NewChatProvider creates a chat provider based on configuration
func NewChatProvider(cfg ChatConfig) (ChatProvider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultModel: "gpt-4o-mini",
		})
	case "ollama":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "ollama",
			APIKey:       "ollama",
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultURL:   "http://localhost:11434/v1",
			DefaultModel: "llama3.1",
			// Local models routinely break strict JSON shapes.
			NoJSONMode: true,
		})
	case "deepseek":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "deepseek",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultURL:   "https://api.deepseek.com/v1",
			DefaultModel: "deepseek-chat",
		})
	case "anthropic":
		return NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
}
