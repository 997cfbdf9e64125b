package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingProvider defines the interface for embedding backends
type EmbeddingProvider interface {
	// CreateEmbedding creates embeddings for the given texts
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)

	// Name returns the provider name (e.g., "openai", "ollama")
	Name() string

	// Dimension returns the embedding vector dimension
	Dimension() int
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// NewEmbeddingProvider creates a new embedding provider based on configuration
func NewEmbeddingProvider(cfg EmbeddingConfig) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIEmbeddingProvider(cfg, openaiEmbeddingDefaults)
	case "ollama":
		return newOpenAIEmbeddingProvider(cfg, ollamaEmbeddingDefaults)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

type embeddingDefaults struct {
	name      string
	baseURL   string
	model     string
	dimension int
}

var openaiEmbeddingDefaults = embeddingDefaults{
	name:      "openai",
	model:     "text-embedding-3-small",
	dimension: 1536,
}

var ollamaEmbeddingDefaults = embeddingDefaults{
	name:      "ollama",
	baseURL:   "http://localhost:11434/v1",
	model:     "nomic-embed-text",
	dimension: 768,
}

// OpenAIEmbeddingProvider implements EmbeddingProvider for any
// OpenAI-compatible embeddings endpoint.
type OpenAIEmbeddingProvider struct {
	client    *openai.Client
	name      string
	model     string
	dimension int
}

func newOpenAIEmbeddingProvider(cfg EmbeddingConfig, defaults embeddingDefaults) (*OpenAIEmbeddingProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		if defaults.name != "ollama" {
			return nil, fmt.Errorf("API key is required for %s embedding", defaults.name)
		}
		apiKey = "ollama"
	}

	model := cfg.Model
	if model == "" {
		model = defaults.model
	}

	config := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	} else if defaults.baseURL != "" {
		config.BaseURL = defaults.baseURL
	}

	return &OpenAIEmbeddingProvider{
		client:    openai.NewClientWithConfig(config),
		name:      defaults.name,
		model:     model,
		dimension: defaults.dimension,
	}, nil
}

// Name returns the provider name
func (p *OpenAIEmbeddingProvider) Name() string {
	return p.name
}

// Dimension returns the embedding vector dimension
func (p *OpenAIEmbeddingProvider) Dimension() int {
	return p.dimension
}

// CreateEmbedding creates embeddings for the given texts
func (p *OpenAIEmbeddingProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s embedding API error: %w", p.name, err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}
