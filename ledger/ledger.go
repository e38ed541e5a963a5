// Package ledger implements a fungible share registry: spendable balances,
// total supply, minter and admin authorization, delegated transfers and
// per-farm time locks.
//
// Every mutating operation checks all of its preconditions against a staged
// view of the state, persists the resulting Delta through the Store and only
// then updates memory, so a failed operation never leaves partial state.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bitfsorg/libyield-go/metrics"
)

const component = "ledger"

var (
	errNoAdmin  = errors.New("ledger: admin identity required")
	errNoHeight = errors.New("ledger: height source required")
)

// HeightSource reports the current chain height. It must be non-decreasing.
type HeightSource interface {
	CurrentHeight() uint64
}

// Options configures a Ledger.
type Options struct {
	Name           string  // label used in logs and metrics; defaults to "default"
	Admin          Account // initial admin, used only when the store is empty
	Self           Account // the ledger's own identity; never a valid recipient
	MaxMetadataLen int     // 0 means DefaultMaxMetadataLen
	Minters        []Account
	Store          Store
	Height         HeightSource
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
}

// Ledger is a share registry guarded by a single mutex.
type Ledger struct {
	mu      sync.RWMutex
	name    string
	self    Account
	maxMeta int
	st      *State
	store   Store
	height  HeightSource
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Open loads the ledger from opts.Store, bootstrapping admin and minters on
// an empty store.
func Open(opts Options) (*Ledger, error) {
	if opts.Height == nil {
		return nil, errNoHeight
	}
	if opts.Store == nil {
		opts.Store = NewMemStore()
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.MaxMetadataLen <= 0 {
		opts.MaxMetadataLen = DefaultMaxMetadataLen
	}

	st, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("ledger: load state: %w", err)
	}
	st.ensureMaps()

	l := &Ledger{
		name:    opts.Name,
		self:    opts.Self,
		maxMeta: opts.MaxMetadataLen,
		st:      st,
		store:   opts.Store,
		height:  opts.Height,
		logger:  resolveLogger(opts.Logger).With("component", component, "ledger", opts.Name),
		metrics: opts.Metrics,
	}

	if st.Admin == "" {
		if opts.Admin == "" {
			return nil, errNoAdmin
		}
		t := newTxn(st)
		admin := opts.Admin
		t.d.Admin = &admin
		for _, m := range opts.Minters {
			if m == "" || m == opts.Self {
				return nil, fmt.Errorf("%w: %q", ErrInvalidMinter, m)
			}
			t.setMinter(m, true)
		}
		if err := l.commit(&t.d); err != nil {
			return nil, err
		}
		l.logger.Info("ledger initialized", "admin", admin, "minters", len(opts.Minters))
	}
	l.metrics.Supply(l.name, l.st.TotalSupply)
	return l, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// Name returns the ledger's label.
func (l *Ledger) Name() string { return l.name }

// commit persists d and then applies it in memory. Callers hold l.mu.
func (l *Ledger) commit(d *Delta) error {
	if d.Empty() {
		return nil
	}
	if err := l.store.Apply(d); err != nil {
		l.logger.Error("persist delta failed", "error", err)
		return fmt.Errorf("ledger: persist: %w", err)
	}
	d.Apply(l.st)
	return nil
}

func (l *Ledger) observe(op string, err *error) {
	l.metrics.Op(component, op, *err)
}

func (l *Ledger) requireAdmin(caller Account) error {
	if caller == "" || caller != l.st.Admin {
		return ErrUnauthorized
	}
	return nil
}

// ---------------------------------------------------------------------------
// Administration
// ---------------------------------------------------------------------------

// AddMinter authorizes minter to mint. Admin only.
func (l *Ledger) AddMinter(caller, minter Account) (err error) {
	defer l.observe("add_minter", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if minter == "" || minter == l.self {
		return ErrInvalidMinter
	}
	if l.st.Minters[minter] {
		return ErrAlreadyRegistered
	}
	t := newTxn(l.st)
	t.setMinter(minter, true)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("minter added", "minter", minter)
	return nil
}

// RemoveMinter revokes minter. Admin only.
func (l *Ledger) RemoveMinter(caller, minter Account) (err error) {
	defer l.observe("remove_minter", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if !l.st.Minters[minter] {
		return ErrInvalidMinter
	}
	t := newTxn(l.st)
	t.setMinter(minter, false)
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("minter removed", "minter", minter)
	return nil
}

// SetPaused sets the pause flag. Admin only, and allowed while paused.
func (l *Ledger) SetPaused(caller Account, paused bool) (err error) {
	defer l.observe("set_paused", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	t := newTxn(l.st)
	t.d.Paused = &paused
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("pause flag set", "paused", paused)
	return nil
}

// SetAdmin hands administration to next. Admin only.
func (l *Ledger) SetAdmin(caller, next Account) (err error) {
	defer l.observe("set_admin", &err)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st.Paused {
		return ErrPaused
	}
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if next == "" || next == l.self {
		return ErrInvalidRecipient
	}
	t := newTxn(l.st)
	t.d.Admin = &next
	if err := l.commit(&t.d); err != nil {
		return err
	}
	l.logger.Info("admin changed", "from", caller, "to", next)
	return nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// BalanceOf returns the spendable balance of a.
func (l *Ledger) BalanceOf(a Account) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Balances[a]
}

// TotalSupply returns the total supply, locked amounts included.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.TotalSupply
}

// Shares returns the spendable balance of each account and the total supply,
// read under a single lock so no mutation lands between them.
func (l *Ledger) Shares(accounts ...Account) ([]uint64, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balances := make([]uint64, len(accounts))
	for i, a := range accounts {
		balances[i] = l.st.Balances[a]
	}
	return balances, l.st.TotalSupply
}

// Allowance returns what spender may still move on behalf of owner.
func (l *Ledger) Allowance(owner, spender Account) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Allowances[AllowanceKey{Owner: owner, Spender: spender}]
}

// LockOf returns the lock held by owner for farm.
func (l *Ledger) LockOf(owner Account, farm FarmID) (Lock, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lk, ok := l.st.Locks[LockKey{Owner: owner, Farm: farm}]
	return lk, ok
}

// IsMinter reports whether a may mint.
func (l *Ledger) IsMinter(a Account) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Minters[a]
}

// Minters returns the registered minters in sorted order.
func (l *Ledger) Minters() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Account, 0, len(l.st.Minters))
	for m := range l.st.Minters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Admin returns the current admin.
func (l *Ledger) Admin() Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Admin
}

// Paused reports whether mutations are rejected.
func (l *Ledger) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Paused
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() *State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.Clone()
}

// CheckConservation verifies that spendable balances plus locked amounts
// equal total supply.
func (l *Ledger) CheckConservation() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return checkConservation(l.st)
}

func checkConservation(s *State) error {
	var sum uint64
	for _, v := range s.Balances {
		sum += v
	}
	for _, lk := range s.Locks {
		sum += lk.Amount
	}
	if sum != s.TotalSupply {
		return fmt.Errorf("%w: held=%d supply=%d", ErrSupplyConservation, sum, s.TotalSupply)
	}
	return nil
}
