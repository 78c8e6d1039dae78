package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

// Default configuration values.
const (
	DefaultConfigFile = "config.toml"
	DefaultDirName    = ".cerebro"
)

// Config is the full engine configuration.
type Config struct {
	Corpus    CorpusConfig    `toml:"corpus"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Routing   RoutingConfig   `toml:"routing"`
	Tagging   TaggingConfig   `toml:"tagging"`
	Watch     WatchConfig     `toml:"watch"`
}

// CorpusConfig locates the document corpus and the engine's data files.
type CorpusConfig struct {
	// Root is the corpus root; immediate subdirectories name domains.
	Root string `toml:"root"`

	// DataDir holds the index snapshot, projection database and ledger.
	DataDir string `toml:"data_dir"`
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	Size     int `toml:"size"`
	Overlap  int `toml:"overlap"`
	MinWords int `toml:"min_words"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// RoutingConfig controls query answering.
type RoutingConfig struct {
	TopK            int `toml:"top_k"`
	MaxContextChars int `toml:"max_context_chars"`
	MaxChunkChars   int `toml:"max_chunk_chars"`
}

// TagRule maps a keyword set to a topic tag.
type TagRule struct {
	Tag      string   `toml:"tag"`
	Keywords []string `toml:"keywords"`
}

// TaggingConfig overrides the built-in tag rules when non-empty.
type TaggingConfig struct {
	Rules []TagRule `toml:"rules"`
}

// WatchConfig controls the filesystem watcher and periodic rescans.
type WatchConfig struct {
	DebounceSeconds     int `toml:"debounce_seconds"`
	RescanIntervalHours int `toml:"rescan_interval_hours"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, DefaultDirName)

	return Config{
		Corpus: CorpusConfig{
			Root:    filepath.Join(base, "corpus"),
			DataDir: filepath.Join(base, "data"),
		},
		Chunking: ChunkingConfig{
			Size:     500,
			Overlap:  100,
			MinWords: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:          "ollama",
			Model:             "all-minilm:l6-v2",
			Dimensions:        384,
			APIKeyEnv:         "CEREBRO_API_KEY",
			TimeoutSeconds:    60,
			RequestsPerSecond: 0,
		},
		Routing: RoutingConfig{
			TopK:            5,
			MaxContextChars: 16000,
			MaxChunkChars:   2000,
		},
		Watch: WatchConfig{
			DebounceSeconds:     10,
			RescanIntervalHours: 12,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, DefaultConfigFile), nil
}

// Load reads the configuration from path. A missing file yields the
// defaults; a present file is unmarshalled over them so partial files
// only override what they mention.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside the
// engine with a worse error.
func (c Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrChunkingConfig)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrChunkingConfig)
	}
	if c.Chunking.MinWords <= 0 {
		return fmt.Errorf("%w: chunking.min_words must be positive", domain.ErrChunkingConfig)
	}
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, c.Embedding.Provider)
	}
	if c.Routing.TopK <= 0 {
		return fmt.Errorf("%w: routing.top_k must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (c EmbeddingConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Timeout returns the request timeout as a duration.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Debounce returns the watcher debounce window as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceSeconds) * time.Second
}

// RescanInterval returns the periodic rescan interval as a duration.
// Zero disables periodic rescans.
func (c WatchConfig) RescanInterval() time.Duration {
	return time.Duration(c.RescanIntervalHours) * time.Hour
}

// Write persists the configuration to path, creating the directory.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
