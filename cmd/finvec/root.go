package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quantmesh/finvec"
	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/embedding"
	"github.com/quantmesh/finvec/internal/config"
)

var (
	cfgFile   string
	indexPath string
	dimension int
	metric    string
	logLevel  string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "finvec",
	Short: "finvec - persistent vector store for financial document analysis",
	Long: `finvec manages a persistent embedding vector store: load documents,
run similarity queries with metadata filters, delete records, and inspect
store health. Flags override values from the config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "index artifact path")
	rootCmd.PersistentFlags().IntVar(&dimension, "dimension", 0, "vector dimension")
	rootCmd.PersistentFlags().StringVar(&metric, "metric", "", "distance metric (l2, ip)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig merges the config file with flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if indexPath != "" {
		cfg.Store.IndexPath = indexPath
	}
	if dimension > 0 {
		cfg.Store.Dimension = dimension
		cfg.Embedding.Dimensions = dimension
	}
	if metric != "" {
		cfg.Store.Metric = metric
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// openStore opens the configured store.
func openStore(cfg *config.Config) (*finvec.Store, error) {
	m, err := distance.ParseMetric(cfg.Store.Metric)
	if err != nil {
		return nil, err
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return finvec.Open(cfg.Store.IndexPath, cfg.Store.Dimension, m,
		finvec.WithLogLevel(level),
	)
}

// newProvider builds the configured embedding provider.
func newProvider(cfg *config.Config) (embedding.Provider, error) {
	return embedding.DefaultFactory(embedding.Config{
		Name:       cfg.Embedding.Provider,
		Dimensions: cfg.Embedding.Dimensions,
	})
}
