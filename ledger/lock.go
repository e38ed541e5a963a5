package ledger

// LockTokens moves amount of the caller's spendable balance into a lock for
// farm that releases at unlockHeight.
//
// A second lock for the same farm replaces the first rather than adding to
// it: the previously locked amount returns to spendable balance and the new
// lock holds exactly amount until the new unlock height.
func (l *Ledger) LockTokens(caller Account, farm FarmID, amount, unlockHeight uint64) (err error) {
	defer l.observe("lock", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if farm == 0 {
		return ErrInvalidFarmID
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	// An unlock height that is not in the future shares the amount error code.
	current := l.height.CurrentHeight()
	if unlockHeight <= current {
		return ErrInvalidAmount
	}

	t := newTxn(l.st)
	key := LockKey{Owner: caller, Farm: farm}
	prev, hadLock := t.lock(key)
	if hadLock {
		if err := t.credit(caller, prev.Amount); err != nil {
			return err
		}
	}
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.setLock(key, &Lock{Amount: amount, UnlockHeight: unlockHeight})
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("tokens locked", "owner", caller, "farm", farm, "amount", amount,
		"unlock_height", unlockHeight, "replaced", hadLock)
	return nil
}

// UnlockTokens returns the caller's lock for farm to spendable balance once
// the current height has reached the unlock height.
func (l *Ledger) UnlockTokens(caller Account, farm FarmID) (err error) {
	defer l.observe("unlock", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	t := newTxn(l.st)
	key := LockKey{Owner: caller, Farm: farm}
	lk, ok := t.lock(key)
	if !ok {
		return ErrInvalidFarmID
	}
	if l.height.CurrentHeight() < lk.UnlockHeight {
		return ErrTokenLocked
	}
	if err := t.credit(caller, lk.Amount); err != nil {
		return err
	}
	t.setLock(key, nil)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("tokens unlocked", "owner", caller, "farm", farm, "amount", lk.Amount)
	return nil
}
