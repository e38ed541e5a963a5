package network

import "fmt"

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url" yaml:"url"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Network  string `json:"network" yaml:"network"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "libyield", Password: "libyield"},
	"testnet": {URL: "http://localhost:18333", User: "libyield", Password: "libyield"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. Explicit settings (highest priority)
//  2. Environment variables (LIBYIELD_RPC_URL, LIBYIELD_RPC_USER, LIBYIELD_RPC_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env["LIBYIELD_RPC_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["LIBYIELD_RPC_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["LIBYIELD_RPC_PASS"]; ok && v != "" {
			result.Password = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set rpc.url, LIBYIELD_RPC_URL, or config file)", network)
	}

	return &result, nil
}
