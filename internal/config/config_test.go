package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Epochs)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, float32(0.01), cfg.LR)
	assert.Equal(t, "sgd", cfg.Optimizer)
	assert.Equal(t, "holdout", cfg.Protocol)
	assert.Equal(t, 5, cfg.Folds)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
epochs: 10
batch_size: 32
optimizer: adam
lr: 0.001
protocol: kfold
folds: 3
data_dir: /data/mnist
results_db: results.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, "adam", cfg.Optimizer)
	assert.Equal(t, float32(0.001), cfg.LR)
	assert.Equal(t, "kfold", cfg.Protocol)
	assert.Equal(t, 3, cfg.Folds)
	assert.Equal(t, "/data/mnist", cfg.DataDir)
	assert.Equal(t, "results.db", cfg.ResultsDB)

	// Unset fields keep their defaults.
	assert.Equal(t, "convnet", cfg.Model)
	assert.Equal(t, float32(0.9), cfg.Momentum)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "epochs: [not a number")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"negative lr", func(c *Config) { c.LR = -0.1 }},
		{"unknown model", func(c *Config) { c.Model = "transformer" }},
		{"unknown optimizer", func(c *Config) { c.Optimizer = "rmsprop" }},
		{"unknown protocol", func(c *Config) { c.Protocol = "bootstrap" }},
		{"one fold", func(c *Config) { c.Protocol = "kfold"; c.Folds = 1 }},
		{"zero iterations", func(c *Config) { c.Protocol = "iterated-kfold"; c.Iterations = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
