package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data/index.fvec", cfg.Store.IndexPath)
	assert.Equal(t, 512, cfg.Store.Dimension)
	assert.Equal(t, "l2", cfg.Store.Metric)
	assert.Equal(t, 64, cfg.Store.BatchSize)
	assert.Equal(t, "hashing", cfg.Embedding.Provider)
	assert.Equal(t, 512, cfg.Embedding.Dimensions)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finvec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  index_path: /var/lib/finvec/index.fvec
  dimension: 1536
  metric: ip
  namespace: filings
embedding:
  dimensions: 1536
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/finvec/index.fvec", cfg.Store.IndexPath)
	assert.Equal(t, 1536, cfg.Store.Dimension)
	assert.Equal(t, "ip", cfg.Store.Metric)
	assert.Equal(t, "filings", cfg.Store.Namespace)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Defaults still fill unset fields.
	assert.Equal(t, 64, cfg.Store.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FINVEC_DIMENSION", "768")
	t.Setenv("FINVEC_NAMESPACE", "research")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 768, cfg.Store.Dimension)
	assert.Equal(t, "research", cfg.Store.Namespace)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finvec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
