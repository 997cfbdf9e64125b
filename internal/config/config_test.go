package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigPipelineKnobs(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Pipeline.PagesToScan != 10 {
		t.Fatalf("expected 10 pages to scan, got %d", cfg.Pipeline.PagesToScan)
	}
	if cfg.Pipeline.FetchTimeoutMS != 800 {
		t.Fatalf("expected 800ms fetch timeout, got %d", cfg.Pipeline.FetchTimeoutMS)
	}
	if cfg.Pipeline.ChunkOverlap >= cfg.Pipeline.ChunkSize {
		t.Fatalf("chunk overlap %d must be smaller than chunk size %d",
			cfg.Pipeline.ChunkOverlap, cfg.Pipeline.ChunkSize)
	}
	if cfg.Media.MaxResults != 9 {
		t.Fatalf("expected media cap of 9, got %d", cfg.Media.MaxResults)
	}
	if !cfg.Pipeline.FollowUps {
		t.Fatalf("expected follow-ups enabled by default")
	}
}

func TestLoadFromPathReadsPipelineSection(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, ".sibyl.yaml")
	content := `search:
  engine: serper
  api_key: "test-key"
pipeline:
  pages_to_scan: 5
  chunk_size: 600
  chunk_overlap: 100
  top_n_per_source: 2
  follow_ups: false
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Search.Engine != "serper" || cfg.Search.APIKey != "test-key" {
		t.Fatalf("unexpected search config: %#v", cfg.Search)
	}
	if cfg.Pipeline.PagesToScan != 5 {
		t.Fatalf("expected 5 pages to scan, got %d", cfg.Pipeline.PagesToScan)
	}
	if cfg.Pipeline.ChunkSize != 600 || cfg.Pipeline.ChunkOverlap != 100 {
		t.Fatalf("unexpected chunking config: %#v", cfg.Pipeline)
	}
	if cfg.Pipeline.FollowUps {
		t.Fatalf("expected follow-ups disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.Port != 8686 {
		t.Fatalf("expected default port, got %d", cfg.Port)
	}
}

func TestLoadFromPathMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Search.Engine != "brave" {
		t.Fatalf("expected default brave engine, got %q", cfg.Search.Engine)
	}
}
