package ledger

import "math"

// mint stages one mint entry on t. Callers check the pause flag.
func (l *Ledger) mint(t *txn, caller Account, e MintEntry) error {
	if !l.st.Minters[caller] {
		return ErrUnauthorized
	}
	if e.Amount == 0 {
		return ErrInvalidAmount
	}
	if len(e.Metadata) > l.maxMeta {
		return ErrMetadataTooLong
	}
	if e.Recipient == "" || e.Recipient == l.self {
		return ErrInvalidRecipient
	}
	supply := t.supply()
	if supply > math.MaxUint64-e.Amount {
		return ErrInvalidAmount
	}
	if err := t.credit(e.Recipient, e.Amount); err != nil {
		return err
	}
	t.setSupply(supply + e.Amount)
	return nil
}

// Mint creates amount new shares for recipient. The caller must be a minter.
func (l *Ledger) Mint(caller, recipient Account, amount uint64, metadata []byte) (err error) {
	defer l.observe("mint", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	t := newTxn(l.st)
	if err := l.mint(t, caller, MintEntry{Recipient: recipient, Amount: amount, Metadata: metadata}); err != nil {
		return err
	}
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("shares minted", "minter", caller, "recipient", recipient, "amount", amount,
		"metadata_len", len(metadata), "supply", l.st.TotalSupply)
	l.metrics.Amount("minted", amount)
	l.metrics.Supply(l.name, l.st.TotalSupply)
	return nil
}

// BatchMint applies every entry in order as one atomic step. The first
// failing entry's error is returned and nothing is applied.
func (l *Ledger) BatchMint(caller Account, entries []MintEntry) (err error) {
	defer l.observe("batch_mint", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	t := newTxn(l.st)
	var total uint64
	for _, e := range entries {
		if err := l.mint(t, caller, e); err != nil {
			return err
		}
		total += e.Amount
	}
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("batch minted", "minter", caller, "entries", len(entries), "amount", total,
		"supply", l.st.TotalSupply)
	l.metrics.Amount("minted", total)
	l.metrics.Supply(l.name, l.st.TotalSupply)
	return nil
}

// Transfer moves amount of sender's spendable balance to recipient.
// The caller must be the sender.
func (l *Ledger) Transfer(caller, sender, recipient Account, amount uint64) (err error) {
	defer l.observe("transfer", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if caller == "" || caller != sender {
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if recipient == "" {
		return ErrInvalidRecipient
	}
	t := newTxn(l.st)
	if err := t.debit(sender, amount); err != nil {
		return err
	}
	if err := t.credit(recipient, amount); err != nil {
		return err
	}
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Debug("shares transferred", "from", sender, "to", recipient, "amount", amount)
	return nil
}

// Approve sets the allowance of spender over the caller's balance,
// replacing any previous allowance.
func (l *Ledger) Approve(caller, spender Account, amount uint64) (err error) {
	defer l.observe("approve", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	t := newTxn(l.st)
	t.setAllowance(AllowanceKey{Owner: caller, Spender: spender}, amount)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Debug("allowance set", "owner", caller, "spender", spender, "amount", amount)
	return nil
}

// TransferFrom moves amount from owner to recipient using the caller's allowance.
func (l *Ledger) TransferFrom(caller, owner, recipient Account, amount uint64) (err error) {
	defer l.observe("transfer_from", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if recipient == "" {
		return ErrInvalidRecipient
	}
	t := newTxn(l.st)
	key := AllowanceKey{Owner: owner, Spender: caller}
	allowed := t.allowance(key)
	if allowed < amount {
		return ErrInsufficientBalance
	}
	if err := t.debit(owner, amount); err != nil {
		return err
	}
	if err := t.credit(recipient, amount); err != nil {
		return err
	}
	t.setAllowance(key, allowed-amount)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Debug("delegated transfer", "spender", caller, "from", owner, "to", recipient, "amount", amount)
	return nil
}

// Burn destroys amount of the caller's spendable balance.
func (l *Ledger) Burn(caller Account, amount uint64) (err error) {
	defer l.observe("burn", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	t := newTxn(l.st)
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.setSupply(t.supply() - amount)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("shares burned", "owner", caller, "amount", amount, "supply", l.st.TotalSupply)
	l.metrics.Amount("burned", amount)
	l.metrics.Supply(l.name, l.st.TotalSupply)
	return nil
}
