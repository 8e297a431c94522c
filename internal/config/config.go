// Package config provides configuration loading for the finvec CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the CLI.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LogLevel  string          `yaml:"log_level"`
}

// StoreConfig holds store location and layout settings.
type StoreConfig struct {
	IndexPath string `yaml:"index_path"`
	Dimension int    `yaml:"dimension"`
	Metric    string `yaml:"metric"`
	Namespace string `yaml:"namespace"`
	BatchSize int    `yaml:"batch_size"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
}

// Load reads and parses the config file at path and applies defaults
// and FINVEC_* environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.IndexPath == "" {
		cfg.Store.IndexPath = "./data/index.fvec"
	}
	if cfg.Store.Dimension == 0 {
		cfg.Store.Dimension = 512
	}
	if cfg.Store.Metric == "" {
		cfg.Store.Metric = "l2"
	}
	if cfg.Store.BatchSize == 0 {
		cfg.Store.BatchSize = 64
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hashing"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = cfg.Store.Dimension
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FINVEC_INDEX_PATH"); v != "" {
		cfg.Store.IndexPath = v
	}
	if v := os.Getenv("FINVEC_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Store.Dimension = n
		}
	}
	if v := os.Getenv("FINVEC_METRIC"); v != "" {
		cfg.Store.Metric = v
	}
	if v := os.Getenv("FINVEC_NAMESPACE"); v != "" {
		cfg.Store.Namespace = v
	}
	if v := os.Getenv("FINVEC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
