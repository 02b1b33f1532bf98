package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the engine configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Search      SearchConfig    `toml:"search"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Workers     WorkersConfig   `toml:"workers"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Format     string   `toml:"format" validate:"oneof=text json"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ChunkingConfig controls segmentation defaults. Size and overlap are in
// characters; strategy multipliers are fixed per strategy, not configured.
type ChunkingConfig struct {
	Size            int    `toml:"size" validate:"gt=0"`
	Overlap         int    `toml:"overlap" validate:"gte=0"`
	DefaultStrategy string `toml:"default_strategy" validate:"oneof=recursive semantic paragraph"`
}

// SearchConfig contains query-time defaults
type SearchConfig struct {
	DefaultTopK    int     `toml:"default_top_k" validate:"gt=0"`
	SemanticWeight float64 `toml:"semantic_weight" validate:"gte=0,lte=1"`
	KeywordWeight  float64 `toml:"keyword_weight" validate:"gte=0,lte=1"`
	MinSimilarity  float64 `toml:"min_similarity" validate:"gte=0,lte=1"` // Results below this combined/semantic score are dropped
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Dimension int `toml:"dimension" validate:"gt=0"` // Embedding vector dimension
}

// WorkersConfig contains configuration for the per-chunk embed pool
type WorkersConfig struct {
	Concurrency int `toml:"concurrency" validate:"gt=0"` // Parallel embedding calls per ingestion batch
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in tessera.toml; strategy
// parameters derived from these (semantic/paragraph multipliers) are
// fixed in the segmenter.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Chunking: ChunkingConfig{
			Size:            1000, // Target chunk size in characters
			Overlap:         200,  // Shared context between consecutive chunks
			DefaultStrategy: "recursive",
		},
		Search: SearchConfig{
			DefaultTopK:    5,
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
			MinSimilarity:  0.3,
		},
		Embedding: EmbeddingConfig{
			Dimension: 384,
		},
		Workers: WorkersConfig{
			Concurrency: 4,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files
// override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("invalid configuration: chunking overlap (%d) must be smaller than chunk size (%d)", c.Chunking.Overlap, c.Chunking.Size)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TESSERA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if path := os.Getenv("TESSERA_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("TESSERA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if topK := os.Getenv("TESSERA_SEARCH_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Search.DefaultTopK = k
		}
	}
}
