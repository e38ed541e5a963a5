// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// validConfig returns DefaultConfig with the required identities filled in.
func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Ledger.Admin = "ledger-admin"
	cfg.Ledger.Minters = []string{"minter"}
	cfg.Distribution.Admin = "dist-admin"
	cfg.Distribution.Oracles = []string{"oracle"}
	return cfg
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"RPC.URL", cfg.RPC.URL, ""},
		{"Height.PollInterval", cfg.Height.PollInterval, 30 * time.Second},
		{"Ledger.MaxMetadataLen", cfg.Ledger.MaxMetadataLen, 256},
		{"RateLimit.RPS", cfg.RateLimit.RPS, float64(50)},
		{"RateLimit.Burst", cfg.RateLimit.Burst, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := validConfig()
	original.DataDir = "/tmp/test-libyield"
	original.Network = "testnet"
	original.LogLevel = "debug"
	original.LogFile = "/tmp/libyield.log"
	original.RPC = RPCConfig{URL: "http://node:18333", User: "u", Password: "p"}
	original.Height.PollInterval = 5 * time.Second
	original.Ledger.Farms = []uint64{7, 9}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DataDir", loaded.DataDir, original.DataDir},
		{"Network", loaded.Network, original.Network},
		{"LogLevel", loaded.LogLevel, original.LogLevel},
		{"LogFile", loaded.LogFile, original.LogFile},
		{"RPC", loaded.RPC, original.RPC},
		{"PollInterval", loaded.Height.PollInterval, original.Height.PollInterval},
		{"Ledger.Admin", loaded.Ledger.Admin, original.Ledger.Admin},
		{"Minters", strings.Join(loaded.Ledger.Minters, ","), "minter"},
		{"Farms", len(loaded.Ledger.Farms), 2},
		{"Distribution.Admin", loaded.Distribution.Admin, original.Distribution.Admin},
		{"Oracles", strings.Join(loaded.Distribution.Oracles, ","), "oracle"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

func TestSaveConfig_OutputContainsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# libyield configuration\n") {
		t.Errorf("config output missing header:\n%s", data)
	}
	if !strings.Contains(string(data), "poll_interval: 30s") {
		t.Errorf("poll interval not written as a duration string:\n%s", data)
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error and edge tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("network: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig invalid yaml: got %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "# comment\nnetwork: regtest\nunknown_key: 1\nledger:\n  admin: root\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
	if cfg.Ledger.Admin != "root" {
		t.Errorf("Ledger.Admin = %q, want %q", cfg.Ledger.Admin, "root")
	}
	if cfg.Ledger.MaxMetadataLen != 256 {
		t.Errorf("MaxMetadataLen = %d, want default 256", cfg.Ledger.MaxMetadataLen)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("network: testnet\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// Environment overrides
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv("LIBYIELD_NETWORK", "regtest")
	t.Setenv("LIBYIELD_RPC_URL", "http://env-node:18332")
	t.Setenv("LIBYIELD_RPC_PASS", "secret")
	t.Setenv("LIBYIELD_LEDGER_MINTERS", "m1,m2")
	t.Setenv("LIBYIELD_LEDGER_FARMS", "3,4")
	t.Setenv("LIBYIELD_HEIGHT_POLL_INTERVAL", "2s")
	t.Setenv("LIBYIELD_RATE_LIMIT_RPS", "7.5")

	cfg := validConfig()
	cfg.LogLevel = "warn"
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "regtest"},
		{"RPC.URL", cfg.RPC.URL, "http://env-node:18332"},
		{"RPC.Password", cfg.RPC.Password, "secret"},
		{"Minters", strings.Join(cfg.Ledger.Minters, ","), "m1,m2"},
		{"Farms", len(cfg.Ledger.Farms), 2},
		{"PollInterval", cfg.Height.PollInterval, 2 * time.Second},
		{"RPS", cfg.RateLimit.RPS, 7.5},
		{"LogLevel untouched", cfg.LogLevel, "warn"},
		{"Admin untouched", cfg.Ledger.Admin, "ledger-admin"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("LIBYIELD_RATE_LIMIT_BURST", "lots")
	cfg := validConfig()
	if err := ApplyEnv(&cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ApplyEnv: got %v, want ErrInvalidConfig", err)
	}
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("LIBYIELD_LEDGER_ADMIN", "root")
	t.Setenv("LIBYIELD_DISTRIBUTION_ADMIN", "root")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ledger.Admin != "root" || cfg.Distribution.Admin != "root" {
		t.Errorf("admins = %q/%q, want root/root", cfg.Ledger.Admin, cfg.Distribution.Admin)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrMissingAdmin) {
		t.Errorf("Load without admins: got %v, want ErrMissingAdmin", err)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigValid(t *testing.T) {
	if err := ValidateConfig(validConfig()); err != nil {
		t.Errorf("ValidateConfig(validConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"empty_network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"bad_rpc_scheme", func(c *Config) { c.RPC.URL = "ftp://node" }, ErrInvalidRPCURL},
		{"rpc_no_host", func(c *Config) { c.RPC.URL = "http://" }, ErrInvalidRPCURL},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"no_ledger_admin", func(c *Config) { c.Ledger.Admin = "" }, ErrMissingAdmin},
		{"no_dist_admin", func(c *Config) { c.Distribution.Admin = "" }, ErrMissingAdmin},
		{"empty_minter", func(c *Config) { c.Ledger.Minters = []string{""} }, ErrInvalidIdentity},
		{"dup_minter", func(c *Config) { c.Ledger.Minters = []string{"a", "a"} }, ErrInvalidIdentity},
		{"self_minter", func(c *Config) { c.Ledger.Self = "minter" }, ErrInvalidIdentity},
		{"dup_oracle", func(c *Config) { c.Distribution.Oracles = []string{"o", "o"} }, ErrInvalidIdentity},
		{"farm_zero", func(c *Config) { c.Ledger.Farms = []uint64{0} }, ErrInvalidFarm},
		{"dup_farm", func(c *Config) { c.Ledger.Farms = []uint64{2, 2} }, ErrInvalidFarm},
		{"negative_metadata", func(c *Config) { c.Ledger.MaxMetadataLen = -1 }, ErrInvalidLimit},
		{"negative_rps", func(c *Config) { c.RateLimit.RPS = -1 }, ErrInvalidLimit},
		{"rps_without_burst", func(c *Config) { c.RateLimit.Burst = 0 }, ErrInvalidLimit},
		{"negative_poll", func(c *Config) { c.Height.PollInterval = -time.Second }, ErrInvalidLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "regtest"} {
		cfg := validConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"DEBUG", "Info", "WARN", "error"} {
		cfg := validConfig()
		cfg.LogLevel = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with loglevel %q: %v", level, err)
		}
	}
}

func TestValidateConfigRateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig with no rate limit: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.libyield")
	want := filepath.Join("/home/user/.libyield", "config.yaml")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestDefaultDataDir_EndsWith_DotLibyield(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".libyield") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".libyield")
	}
}

func TestDBPath(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got, want := cfg.DBPath(), filepath.Join("/data", "yield.db"); got != want {
		t.Errorf("DBPath = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Logger
// ---------------------------------------------------------------------------

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "warn"
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "yield.log")

	logger, closer, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "farm", 7)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"farm":7`) {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("verbose"); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("ParseLevel(verbose) = %v, want ErrInvalidLogLevel", err)
	}
	lvl, err := ParseLevel("DEBUG")
	if err != nil || lvl.String() != "DEBUG" {
		t.Errorf("ParseLevel(DEBUG) = %v, %v", lvl, err)
	}
}
