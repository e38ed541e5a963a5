package ledger

import "errors"

var (
	// ErrUnauthorized indicates the caller may not perform the operation.
	ErrUnauthorized = errors.New("ledger: unauthorized")

	// ErrPaused indicates the ledger is paused and rejects mutations.
	ErrPaused = errors.New("ledger: paused")

	// ErrInvalidAmount indicates a zero, overflowing or otherwise unusable amount.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrInvalidRecipient indicates the recipient cannot hold shares.
	ErrInvalidRecipient = errors.New("ledger: invalid recipient")

	// ErrInvalidMinter indicates the minter identity is not acceptable.
	ErrInvalidMinter = errors.New("ledger: invalid minter")

	// ErrAlreadyRegistered indicates the minter is already registered.
	ErrAlreadyRegistered = errors.New("ledger: minter already registered")

	// ErrMetadataTooLong indicates mint metadata exceeds the configured bound.
	ErrMetadataTooLong = errors.New("ledger: metadata too long")

	// ErrInsufficientBalance indicates the spendable balance or allowance is too small.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInvalidFarmID indicates the farm identifier is unknown or reserved.
	ErrInvalidFarmID = errors.New("ledger: invalid farm id")

	// ErrTokenLocked indicates the lock has not reached its unlock height.
	ErrTokenLocked = errors.New("ledger: tokens locked")

	// ErrSupplyConservation indicates balances and locks no longer sum to total supply.
	ErrSupplyConservation = errors.New("ledger: supply conservation violated")
)
