package search

import "context"

// Engine discovers candidate web pages for a query.
//
// Search returns the provider's ranked results. A non-success upstream status
// or a response missing the expected shape fails the whole call; there is no
// retry and no fallback — the caller decides what to do with the failure.
type Engine interface {
	Name() string
	Type() string
	Search(ctx context.Context, query string, count int) ([]Source, error)
}

type EngineFactory func(config EngineConfig) (Engine, error)

type EngineConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}
