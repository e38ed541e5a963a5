// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if cfg.RPC.URL != "" {
		if err := validateURL(cfg.RPC.URL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.Ledger.Admin == "" {
		return fmt.Errorf("%w: ledger", ErrMissingAdmin)
	}
	if err := validateIdentities("minter", cfg.Ledger.Minters, cfg.Ledger.Self); err != nil {
		return err
	}
	seen := make(map[uint64]bool, len(cfg.Ledger.Farms))
	for _, f := range cfg.Ledger.Farms {
		if f == 0 || seen[f] {
			return fmt.Errorf("%w: %d", ErrInvalidFarm, f)
		}
		seen[f] = true
	}

	if cfg.Distribution.Admin == "" {
		return fmt.Errorf("%w: distribution", ErrMissingAdmin)
	}
	if err := validateIdentities("oracle", cfg.Distribution.Oracles, ""); err != nil {
		return err
	}

	if cfg.Ledger.MaxMetadataLen < 0 {
		return fmt.Errorf("%w: max_metadata_len %d", ErrInvalidLimit, cfg.Ledger.MaxMetadataLen)
	}
	if cfg.RateLimit.RPS < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: rate limit %v/%d", ErrInvalidLimit, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst == 0 {
		return fmt.Errorf("%w: burst must be positive when rps is set", ErrInvalidLimit)
	}
	if cfg.Height.PollInterval < 0 {
		return fmt.Errorf("%w: poll_interval %s", ErrInvalidLimit, cfg.Height.PollInterval)
	}

	return nil
}

// validateURL checks that raw is an absolute http or https URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// validateIdentities rejects empty or duplicate ids, and any id equal to self.
func validateIdentities(kind string, ids []string, self string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] || (self != "" && id == self) {
			return fmt.Errorf("%w: %s %q", ErrInvalidIdentity, kind, id)
		}
		seen[id] = true
	}
	return nil
}
