package ledger

import "math"

// Delta is the set of records changed by one operation. Zero balances and
// allowances, nil locks and false minter flags mean the record is removed.
// A Store must apply a Delta in full or not at all.
type Delta struct {
	Admin       *Account
	Paused      *bool
	TotalSupply *uint64
	Balances    map[Account]uint64
	Allowances  map[AllowanceKey]uint64
	Locks       map[LockKey]*Lock
	Minters     map[Account]bool
}

// Empty reports whether the delta changes nothing.
func (d *Delta) Empty() bool {
	return d.Admin == nil && d.Paused == nil && d.TotalSupply == nil &&
		len(d.Balances) == 0 && len(d.Allowances) == 0 &&
		len(d.Locks) == 0 && len(d.Minters) == 0
}

// Apply writes the delta into s.
func (d *Delta) Apply(s *State) {
	s.ensureMaps()
	if d.Admin != nil {
		s.Admin = *d.Admin
	}
	if d.Paused != nil {
		s.Paused = *d.Paused
	}
	if d.TotalSupply != nil {
		s.TotalSupply = *d.TotalSupply
	}
	for k, v := range d.Balances {
		if v == 0 {
			delete(s.Balances, k)
		} else {
			s.Balances[k] = v
		}
	}
	for k, v := range d.Allowances {
		if v == 0 {
			delete(s.Allowances, k)
		} else {
			s.Allowances[k] = v
		}
	}
	for k, v := range d.Locks {
		if v == nil {
			delete(s.Locks, k)
		} else {
			s.Locks[k] = *v
		}
	}
	for k, v := range d.Minters {
		if v {
			s.Minters[k] = true
		} else {
			delete(s.Minters, k)
		}
	}
}

// txn stages writes on top of the committed state so that later checks in
// the same operation (batch mint) observe earlier staged writes.
type txn struct {
	st *State
	d  Delta
}

func newTxn(st *State) *txn {
	return &txn{st: st}
}

func (t *txn) balance(a Account) uint64 {
	if v, ok := t.d.Balances[a]; ok {
		return v
	}
	return t.st.Balances[a]
}

func (t *txn) setBalance(a Account, v uint64) {
	if t.d.Balances == nil {
		t.d.Balances = make(map[Account]uint64)
	}
	t.d.Balances[a] = v
}

func (t *txn) supply() uint64 {
	if t.d.TotalSupply != nil {
		return *t.d.TotalSupply
	}
	return t.st.TotalSupply
}

func (t *txn) setSupply(v uint64) {
	t.d.TotalSupply = &v
}

func (t *txn) credit(a Account, amount uint64) error {
	bal := t.balance(a)
	if bal > math.MaxUint64-amount {
		return ErrInvalidAmount
	}
	t.setBalance(a, bal+amount)
	return nil
}

func (t *txn) debit(a Account, amount uint64) error {
	bal := t.balance(a)
	if bal < amount {
		return ErrInsufficientBalance
	}
	t.setBalance(a, bal-amount)
	return nil
}

func (t *txn) allowance(k AllowanceKey) uint64 {
	if v, ok := t.d.Allowances[k]; ok {
		return v
	}
	return t.st.Allowances[k]
}

func (t *txn) setAllowance(k AllowanceKey, v uint64) {
	if t.d.Allowances == nil {
		t.d.Allowances = make(map[AllowanceKey]uint64)
	}
	t.d.Allowances[k] = v
}

func (t *txn) lock(k LockKey) (Lock, bool) {
	if v, ok := t.d.Locks[k]; ok {
		if v == nil {
			return Lock{}, false
		}
		return *v, true
	}
	v, ok := t.st.Locks[k]
	return v, ok
}

func (t *txn) setLock(k LockKey, v *Lock) {
	if t.d.Locks == nil {
		t.d.Locks = make(map[LockKey]*Lock)
	}
	t.d.Locks[k] = v
}

func (t *txn) setMinter(a Account, on bool) {
	if t.d.Minters == nil {
		t.d.Minters = make(map[Account]bool)
	}
	t.d.Minters[a] = on
}
