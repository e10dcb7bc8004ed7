package model

import "time"

// Config is the full PaperCheck configuration, populated from defaults,
// ~/.papercheck/config.yaml, PAPERCHECK_* environment variables and CLI
// flags, in ascending priority.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Scholar     ScholarConfig     `yaml:"scholar" mapstructure:"scholar"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Poll        PollConfig        `yaml:"poll" mapstructure:"poll"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LLMConfig configures the relevance-analysis model provider.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ScholarConfig configures reference-metadata lookup.
type ScholarConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxPDFBytes int64         `yaml:"max_pdf_bytes" mapstructure:"max_pdf_bytes"`
	HTTPProxy   string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the layered lookup cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the analysis fan-out.
type ConcurrencyConfig struct {
	AnalysisWorkers   int     `yaml:"analysis_workers" mapstructure:"analysis_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// PollConfig bounds the client-side progress polling budget.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	MaxPolls int           `yaml:"max_polls" mapstructure:"max_polls"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":5001",
			MaxUploadBytes: 16 << 20,
		},
		LLM: LLMConfig{
			Provider:  "", // disabled by default
			Timeout:   30,
			MaxTokens: 500,
		},
		Scholar: ScholarConfig{
			Enabled:     true,
			BaseURL:     "https://api.semanticscholar.org/graph/v1",
			UserAgent:   "PaperCheck/0.1 (+https://github.com/papercheck/papercheck)",
			Timeout:     60 * time.Second,
			MaxPDFBytes: 20 << 20,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.papercheck/cache at startup
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   14 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			AnalysisWorkers:   10,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Poll: PollConfig{
			Interval: 2 * time.Second,
			MaxPolls: 300,
		},
	}
}
