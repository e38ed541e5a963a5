// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidRPCURL indicates the node RPC URL is malformed.
	ErrInvalidRPCURL = errors.New("config: invalid rpc url")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfig indicates the config file or environment could not be parsed.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrMissingAdmin indicates a ledger or the distribution engine has no admin.
	ErrMissingAdmin = errors.New("config: admin identity must not be empty")

	// ErrInvalidIdentity indicates an empty or duplicated minter, oracle, or self identity.
	ErrInvalidIdentity = errors.New("config: invalid identity")

	// ErrInvalidFarm indicates farm 0 or a duplicate farm in the dedicated ledger list.
	ErrInvalidFarm = errors.New("config: invalid farm id")

	// ErrInvalidLimit indicates a negative metadata bound, rate, burst, or poll interval.
	ErrInvalidLimit = errors.New("config: invalid limit")
)
