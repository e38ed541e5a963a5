// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads libyield settings from a YAML file and LIBYIELD_*
// environment overrides, validates them, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIBYIELD_"

// configFileName is the name of the config file inside the data directory.
const configFileName = "config.yaml"

// Config holds all libyield settings.
type Config struct {
	DataDir      string             `yaml:"data_dir" env:"DATA_DIR"`
	Network      string             `yaml:"network" env:"NETWORK"`
	LogLevel     string             `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile      string             `yaml:"log_file" env:"LOG_FILE"`
	RPC          RPCConfig          `yaml:"rpc" envPrefix:"RPC_"`
	Height       HeightConfig       `yaml:"height" envPrefix:"HEIGHT_"`
	Ledger       LedgerConfig       `yaml:"ledger" envPrefix:"LEDGER_"`
	Distribution DistributionConfig `yaml:"distribution" envPrefix:"DISTRIBUTION_"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// RPCConfig points at the chain node that supplies block heights. An empty
// URL runs offline on a manually advanced height.
type RPCConfig struct {
	URL      string `yaml:"url" env:"URL"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASS"`
}

// HeightConfig controls the height source.
type HeightConfig struct {
	Start        uint64        `yaml:"start" env:"START"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
}

// LedgerConfig bootstraps share ledgers on an empty store.
type LedgerConfig struct {
	Admin          string   `yaml:"admin" env:"ADMIN"`
	Self           string   `yaml:"self" env:"SELF"`
	MaxMetadataLen int      `yaml:"max_metadata_len" env:"MAX_METADATA_LEN"`
	Minters        []string `yaml:"minters" env:"MINTERS"`
	// Farms lists farms that get a dedicated ledger. Other farms read
	// shares from the default ledger.
	Farms []uint64 `yaml:"farms" env:"FARMS"`
}

// DistributionConfig bootstraps the distribution engine on an empty store.
type DistributionConfig struct {
	Admin   string   `yaml:"admin" env:"ADMIN"`
	Oracles []string `yaml:"oracles" env:"ORACLES"`
}

// RateLimitConfig bounds calls per caller. A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RPS"`
	Burst int     `yaml:"burst" env:"BURST"`
}

// DefaultDataDir returns the default data directory (~/.libyield).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libyield"
	}
	return filepath.Join(home, ".libyield")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// DBPath returns the bbolt database path inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "yield.db")
}

// DefaultConfig returns a Config with sensible defaults. Admin identities
// are left empty and must be configured.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		Network:  "mainnet",
		LogLevel: "info",
		Height: HeightConfig{
			PollInterval: 30 * time.Second,
		},
		Ledger: LedgerConfig{
			MaxMetadataLen: 256,
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep their
// DefaultConfig values; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	out := append([]byte("# libyield configuration\n"), data...)
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any LIBYIELD_* variables that are set.
// List values are comma separated.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads path if it exists, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, ErrConfigNotFound) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
