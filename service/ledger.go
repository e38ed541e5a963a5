package service

import (
	"github.com/bitfsorg/libyield-go/ledger"
)

// Share ledger operations. Each takes the farm whose ledger it acts on;
// farms without a dedicated ledger use the default one.

func (c *Core) ledgerFor(farm ledger.FarmID) (*ledger.Ledger, error) {
	return c.registry.Ledger(farm)
}

// onLedger runs a mutating ledger operation for caller.
func (c *Core) onLedger(op string, caller ledger.Account, farm ledger.FarmID, fn func(*ledger.Ledger) error) Result[Empty] {
	return exec(c, op, string(caller), func() error {
		l, err := c.ledgerFor(farm)
		if err != nil {
			return err
		}
		return fn(l)
	})
}

// readLedger runs a ledger query.
func readLedger[T any](c *Core, op string, farm ledger.FarmID, fn func(*ledger.Ledger) (T, error)) Result[T] {
	return call(c, op, "", func() (T, error) {
		l, err := c.ledgerFor(farm)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(l)
	})
}

// Mint creates amount new shares for recipient. Minters only.
func (c *Core) Mint(caller ledger.Account, farm ledger.FarmID, recipient ledger.Account, amount uint64, metadata []byte) Result[Empty] {
	return c.onLedger("mint", caller, farm, func(l *ledger.Ledger) error {
		return l.Mint(caller, recipient, amount, metadata)
	})
}

// BatchMint applies every entry or none of them.
func (c *Core) BatchMint(caller ledger.Account, farm ledger.FarmID, entries []ledger.MintEntry) Result[Empty] {
	return c.onLedger("batch_mint", caller, farm, func(l *ledger.Ledger) error {
		return l.BatchMint(caller, entries)
	})
}

// Transfer moves amount from sender to recipient; caller must be sender.
func (c *Core) Transfer(caller ledger.Account, farm ledger.FarmID, sender, recipient ledger.Account, amount uint64) Result[Empty] {
	return c.onLedger("transfer", caller, farm, func(l *ledger.Ledger) error {
		return l.Transfer(caller, sender, recipient, amount)
	})
}

// Approve sets what spender may move on caller's behalf.
func (c *Core) Approve(caller ledger.Account, farm ledger.FarmID, spender ledger.Account, amount uint64) Result[Empty] {
	return c.onLedger("approve", caller, farm, func(l *ledger.Ledger) error {
		return l.Approve(caller, spender, amount)
	})
}

// TransferFrom moves owner's shares against caller's allowance.
func (c *Core) TransferFrom(caller ledger.Account, farm ledger.FarmID, owner, recipient ledger.Account, amount uint64) Result[Empty] {
	return c.onLedger("transfer_from", caller, farm, func(l *ledger.Ledger) error {
		return l.TransferFrom(caller, owner, recipient, amount)
	})
}

// Burn destroys amount of caller's shares.
func (c *Core) Burn(caller ledger.Account, farm ledger.FarmID, amount uint64) Result[Empty] {
	return c.onLedger("burn", caller, farm, func(l *ledger.Ledger) error {
		return l.Burn(caller, amount)
	})
}

// LockTokens locks caller's shares in farm's ledger against farm.
func (c *Core) LockTokens(caller ledger.Account, farm ledger.FarmID, amount, unlockHeight uint64) Result[Empty] {
	return c.onLedger("lock", caller, farm, func(l *ledger.Ledger) error {
		return l.LockTokens(caller, farm, amount, unlockHeight)
	})
}

// UnlockTokens releases caller's lock on farm once its height is reached.
func (c *Core) UnlockTokens(caller ledger.Account, farm ledger.FarmID) Result[Empty] {
	return c.onLedger("unlock", caller, farm, func(l *ledger.Ledger) error {
		return l.UnlockTokens(caller, farm)
	})
}

// AddMinter grants minting rights. Admin only.
func (c *Core) AddMinter(caller ledger.Account, farm ledger.FarmID, minter ledger.Account) Result[Empty] {
	return c.onLedger("add_minter", caller, farm, func(l *ledger.Ledger) error {
		return l.AddMinter(caller, minter)
	})
}

// RemoveMinter revokes minting rights. Admin only.
func (c *Core) RemoveMinter(caller ledger.Account, farm ledger.FarmID, minter ledger.Account) Result[Empty] {
	return c.onLedger("remove_minter", caller, farm, func(l *ledger.Ledger) error {
		return l.RemoveMinter(caller, minter)
	})
}

// SetLedgerPaused pauses or resumes farm's ledger.
func (c *Core) SetLedgerPaused(caller ledger.Account, farm ledger.FarmID, paused bool) Result[Empty] {
	return c.onLedger("ledger_set_paused", caller, farm, func(l *ledger.Ledger) error {
		return l.SetPaused(caller, paused)
	})
}

// SetLedgerAdmin hands administration of farm's ledger to next.
func (c *Core) SetLedgerAdmin(caller ledger.Account, farm ledger.FarmID, next ledger.Account) Result[Empty] {
	return c.onLedger("ledger_set_admin", caller, farm, func(l *ledger.Ledger) error {
		return l.SetAdmin(caller, next)
	})
}

// --- queries ---

// BalanceOf returns a's spendable balance.
func (c *Core) BalanceOf(farm ledger.FarmID, a ledger.Account) Result[uint64] {
	return readLedger(c, "balance_of", farm, func(l *ledger.Ledger) (uint64, error) {
		return l.BalanceOf(a), nil
	})
}

// TotalSupply returns the total supply, locked shares included.
func (c *Core) TotalSupply(farm ledger.FarmID) Result[uint64] {
	return readLedger(c, "total_supply", farm, func(l *ledger.Ledger) (uint64, error) {
		return l.TotalSupply(), nil
	})
}

// Allowance returns what spender may still move for owner.
func (c *Core) Allowance(farm ledger.FarmID, owner, spender ledger.Account) Result[uint64] {
	return readLedger(c, "allowance", farm, func(l *ledger.Ledger) (uint64, error) {
		return l.Allowance(owner, spender), nil
	})
}

// LockOf returns owner's lock against farm; a missing lock is the zero Lock.
func (c *Core) LockOf(farm ledger.FarmID, owner ledger.Account) Result[ledger.Lock] {
	return readLedger(c, "lock_of", farm, func(l *ledger.Ledger) (ledger.Lock, error) {
		lk, _ := l.LockOf(owner, farm)
		return lk, nil
	})
}

// IsMinter reports whether a may mint.
func (c *Core) IsMinter(farm ledger.FarmID, a ledger.Account) Result[bool] {
	return readLedger(c, "is_minter", farm, func(l *ledger.Ledger) (bool, error) {
		return l.IsMinter(a), nil
	})
}

// Minters returns the minters, sorted.
func (c *Core) Minters(farm ledger.FarmID) Result[[]ledger.Account] {
	return readLedger(c, "minters", farm, func(l *ledger.Ledger) ([]ledger.Account, error) {
		return l.Minters(), nil
	})
}

// LedgerAdmin returns the ledger administrator.
func (c *Core) LedgerAdmin(farm ledger.FarmID) Result[ledger.Account] {
	return readLedger(c, "ledger_admin", farm, func(l *ledger.Ledger) (ledger.Account, error) {
		return l.Admin(), nil
	})
}

// LedgerPaused reports whether the ledger is paused.
func (c *Core) LedgerPaused(farm ledger.FarmID) Result[bool] {
	return readLedger(c, "ledger_paused", farm, func(l *ledger.Ledger) (bool, error) {
		return l.Paused(), nil
	})
}

// LedgerDigest returns the hex double-SHA256 digest of farm's ledger state.
func (c *Core) LedgerDigest(farm ledger.FarmID) Result[string] {
	return readLedger(c, "ledger_digest", farm, func(l *ledger.Ledger) (string, error) {
		return l.Digest().String(), nil
	})
}

// CheckConservation verifies that spendable plus locked balances equal the
// total supply of farm's ledger.
func (c *Core) CheckConservation(farm ledger.FarmID) Result[Empty] {
	return readLedger(c, "check_conservation", farm, func(l *ledger.Ledger) (Empty, error) {
		return Empty{}, l.CheckConservation()
	})
}
