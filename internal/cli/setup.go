package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/papercheck/papercheck/internal/analyze"
	"github.com/papercheck/papercheck/internal/cache"
	"github.com/papercheck/papercheck/internal/llm"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/scholar"
	"github.com/papercheck/papercheck/internal/worker"
)

// loadConfig merges defaults, the config file and environment variables.
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse configuration: %w", err)
	}

	// Provider API keys come from the conventional env vars when the
	// config leaves them empty.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	if cfg.Cache.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("find home directory: %w", err)
		}
		cfg.Cache.Dir = filepath.Join(home, ".papercheck", "cache")
	}

	return cfg, nil
}

// newLogger builds the process logger. Verbose mode enables debug records.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildEngine wires the provider, cache, rate limiter and lookup client
// into an analysis engine.
func buildEngine(cfg model.Config, logger *slog.Logger) (*analyze.Engine, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}

	var lookup *scholar.Client
	if cfg.Scholar.Enabled {
		var store cache.Cache
		if cfg.Cache.Enabled {
			memory := cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
			disk := cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL)
			store = cache.NewLayeredCache(memory, disk)
		}
		limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
		lookup = scholar.NewClient(cfg.Scholar, store, limiter, logger)
	}

	return analyze.NewEngine(provider, lookup, cfg.Concurrency.AnalysisWorkers, logger), nil
}
