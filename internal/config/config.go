// Package config loads training configuration from YAML with CLI
// overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds every knob of a training or cross-validation run.
type Config struct {
	// Data
	DataDir    string `yaml:"data_dir"`  // directory with the IDX files; empty = synthetic data
	Synthetic  int    `yaml:"synthetic"` // synthetic sample count when DataDir is empty
	NumClasses int    `yaml:"num_classes"`

	// Model
	Model string `yaml:"model"` // "convnet" or "mlp"

	// Training
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	Optimizer string  `yaml:"optimizer"` // "sgd" or "adam"
	LR        float32 `yaml:"lr"`
	Momentum  float32 `yaml:"momentum"`
	Seed      int64   `yaml:"seed"`

	// Evaluation protocol
	Protocol   string `yaml:"protocol"` // "holdout", "kfold" or "iterated-kfold"
	ValSize    int    `yaml:"val_size"`
	Folds      int    `yaml:"folds"`
	Iterations int    `yaml:"iterations"`

	// Output
	ResultsDB string `yaml:"results_db"` // SQLite file; empty = no persistence
	LogFile   string `yaml:"log_file"`   // rotating log file; empty = stderr only
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Synthetic:  512,
		NumClasses: 10,
		Model:      "convnet",
		Epochs:     5,
		BatchSize:  64,
		Optimizer:  "sgd",
		LR:         0.01,
		Momentum:   0.9,
		Seed:       42,
		Protocol:   "holdout",
		ValSize:    10000,
		Folds:      5,
		Iterations: 1,
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("config: epochs must be at least 1, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be at least 1, got %d", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("config: lr must be positive, got %g", c.LR)
	}
	switch c.Model {
	case "convnet", "mlp":
	default:
		return fmt.Errorf("config: unknown model %q (want convnet or mlp)", c.Model)
	}
	switch c.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("config: unknown optimizer %q (want sgd or adam)", c.Optimizer)
	}
	switch c.Protocol {
	case "holdout", "kfold", "iterated-kfold":
	default:
		return fmt.Errorf("config: unknown protocol %q (want holdout, kfold or iterated-kfold)", c.Protocol)
	}
	if c.Protocol != "holdout" && c.Folds < 2 {
		return fmt.Errorf("config: folds must be at least 2, got %d", c.Folds)
	}
	if c.Protocol == "iterated-kfold" && c.Iterations < 1 {
		return fmt.Errorf("config: iterations must be at least 1, got %d", c.Iterations)
	}
	return nil
}
