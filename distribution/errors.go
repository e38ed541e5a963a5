package distribution

import "errors"

var (
	// ErrUnauthorized indicates the caller may not perform the operation.
	ErrUnauthorized = errors.New("distribution: unauthorized")

	// ErrPaused indicates the engine is paused and rejects mutations.
	ErrPaused = errors.New("distribution: paused")

	// ErrNoYield indicates there is nothing to pay: zero earnings, a zero
	// share, or ending a window that is not open.
	ErrNoYield = errors.New("distribution: no yield")

	// ErrAlreadyClaimed indicates the claimant already settled this farm.
	ErrAlreadyClaimed = errors.New("distribution: already claimed")

	// ErrInvalidFarm indicates the farm has no yield report or share ledger.
	ErrInvalidFarm = errors.New("distribution: invalid farm")

	// ErrInsufficientFunds indicates a payout would exceed the reported earnings.
	ErrInsufficientFunds = errors.New("distribution: insufficient funds")

	// ErrOracleNotTrusted indicates the reporter is not a trusted oracle.
	ErrOracleNotTrusted = errors.New("distribution: oracle not trusted")

	// ErrDistributionActive indicates a distribution window is already open.
	ErrDistributionActive = errors.New("distribution: distribution already active")
)
