package cmd

import (
	"fmt"
	"time"

	"github.com/sibylsearch/sibyl/internal/answer"
	"github.com/sibylsearch/sibyl/internal/config"
	"github.com/sibylsearch/sibyl/internal/llm"
	"github.com/sibylsearch/sibyl/internal/media"
	"github.com/sibylsearch/sibyl/internal/pipeline"
	"github.com/sibylsearch/sibyl/internal/retrieval"
	"github.com/sibylsearch/sibyl/internal/scrape"
	"github.com/sibylsearch/sibyl/internal/search"
)

// buildPipeline wires the configured providers into one pipeline. All
// collaborators are constructed here and passed in explicitly.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	registry := search.NewRegistry()
	engine, err := registry.CreateEngine(search.EngineConfig{
		Type:    cfg.Search.Engine,
		APIKey:  cfg.Search.APIKey,
		BaseURL: cfg.Search.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search engine: %w", err)
	}

	serper := media.NewSerper(media.SerperConfig{
		APIKey:     cfg.Media.APIKey,
		BaseURL:    cfg.Media.BaseURL,
		MaxResults: cfg.Media.MaxResults,
	})

	scraper := scrape.NewScraper(time.Duration(cfg.Pipeline.FetchTimeoutMS) * time.Millisecond)

	embedder, err := llm.NewEmbeddingProvider(llm.EmbeddingConfig{
		Provider: cfg.Embedding.Provider,
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	retriever := retrieval.NewRetriever(embedder,
		cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap, cfg.Pipeline.TopNPerSource)

	chat, err := llm.NewChatProvider(llm.ChatConfig{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat provider: %w", err)
	}

	return pipeline.New(pipeline.Deps{
		Search:    engine,
		Images:    serper,
		Videos:    serper,
		Scraper:   scraper,
		Retriever: retriever,
		Generator: answer.NewGenerator(chat),
	}, pipeline.Options{
		PagesToScan: cfg.Pipeline.PagesToScan,
		FollowUps:   cfg.Pipeline.FollowUps && chat.SupportsJSONMode(),
	}), nil
}
