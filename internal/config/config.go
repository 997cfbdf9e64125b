package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Port      int             `yaml:"port"`
	Logging   LoggingConfig   `yaml:"logging"`
	AI        AIConfig        `yaml:"ai,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Media     MediaConfig     `yaml:"media,omitempty"`
	Pipeline  PipelineConfig  `yaml:"pipeline,omitempty"`
}

// AIConfig selects the chat/completion backend used for answer and
// follow-up generation.
type AIConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai", "ollama", "deepseek", "anthropic"
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// EmbeddingConfig selects the embedding backend for semantic retrieval.
type EmbeddingConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai", "ollama"
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// SearchConfig selects the web-search engine used for source discovery.
type SearchConfig struct {
	Engine  string `yaml:"engine"` // "brave" or "serper"
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// MediaConfig configures the image/video discovery providers.
type MediaConfig struct {
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	MaxResults int    `yaml:"max_results,omitempty"`
}

// PipelineConfig holds the knobs of the answer pipeline. These are pure
// parameters; no stage branches on their presence.
type PipelineConfig struct {
	PagesToScan    int  `yaml:"pages_to_scan,omitempty"`
	FetchTimeoutMS int  `yaml:"fetch_timeout_ms,omitempty"`
	ChunkSize      int  `yaml:"chunk_size,omitempty"`
	ChunkOverlap   int  `yaml:"chunk_overlap,omitempty"`
	TopNPerSource  int  `yaml:"top_n_per_source,omitempty"`
	FollowUps      bool `yaml:"follow_ups"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Port: 8686,
		Logging: LoggingConfig{
			Level: "info",
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Search: SearchConfig{
			Engine: "brave",
		},
		Media: MediaConfig{
			MaxResults: 9,
		},
		Pipeline: PipelineConfig{
			PagesToScan:    10,
			FetchTimeoutMS: 800,
			ChunkSize:      1000,
			ChunkOverlap:   400,
			TopNPerSource:  4,
			FollowUps:      true,
		},
	}
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".sibyl.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}

// applyEnv fills API keys from the environment when the file left them empty.
func (c *Config) applyEnv() {
	if c.Search.APIKey == "" {
		switch c.Search.Engine {
		case "serper":
			c.Search.APIKey = os.Getenv("SERPER_API_KEY")
		default:
			c.Search.APIKey = os.Getenv("BRAVE_SEARCH_API_KEY")
		}
	}
	if c.Media.APIKey == "" {
		c.Media.APIKey = os.Getenv("SERPER_API_KEY")
	}
	if c.AI.APIKey == "" {
		if c.AI.Provider == "anthropic" {
			c.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		} else {
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}
