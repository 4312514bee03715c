package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tellerd-dev/tellerd/internal/ledger"
)

// FileName is the default configuration file name.
const FileName = "tellerd.yaml"

// Config represents the top-level tellerd.yaml configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Seed       SeedConfig       `yaml:"seed"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ThresholdsConfig holds the risk limits as decimal strings in currency
// units.
type ThresholdsConfig struct {
	HighValue       string `yaml:"high_value"`
	CumulativeDaily string `yaml:"cumulative_daily"`
}

// SeedConfig controls synthetic data volumes.
type SeedConfig struct {
	Customers    int `yaml:"customers"`
	Transactions int `yaml:"transactions"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig controls the dashboard API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a tellerd.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the standard limits and volumes.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "tellerd.db",
		},
		Thresholds: ThresholdsConfig{
			HighValue:       "10000000",
			CumulativeDaily: "20000000",
		},
		Seed: SeedConfig{
			Customers:    1000,
			Transactions: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LedgerThresholds parses the configured limits into engine thresholds.
func (c *Config) LedgerThresholds() (ledger.Thresholds, error) {
	high, err := decimal.NewFromString(c.Thresholds.HighValue)
	if err != nil {
		return ledger.Thresholds{}, fmt.Errorf("parsing thresholds.high_value %q: %w", c.Thresholds.HighValue, err)
	}
	daily, err := decimal.NewFromString(c.Thresholds.CumulativeDaily)
	if err != nil {
		return ledger.Thresholds{}, fmt.Errorf("parsing thresholds.cumulative_daily %q: %w", c.Thresholds.CumulativeDaily, err)
	}
	return ledger.Thresholds{HighValue: high, CumulativeDaily: daily}, nil
}
