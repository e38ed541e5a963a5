package ledger

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves the ledger holding a farm's shares. Farms without a
// dedicated ledger read from the fallback ledger, if any.
type Registry struct {
	mu       sync.RWMutex
	byFarm   map[FarmID]*Ledger
	fallback *Ledger
}

// NewRegistry creates a registry. fallback may be nil.
func NewRegistry(fallback *Ledger) *Registry {
	return &Registry{
		byFarm:   make(map[FarmID]*Ledger),
		fallback: fallback,
	}
}

// Register binds farm to a dedicated ledger.
func (r *Registry) Register(farm FarmID, l *Ledger) error {
	if farm == 0 || l == nil {
		return fmt.Errorf("%w: %d", ErrInvalidFarmID, farm)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFarm[farm]; exists {
		return fmt.Errorf("%w: farm %d", ErrAlreadyRegistered, farm)
	}
	r.byFarm[farm] = l
	return nil
}

// Ledger returns the ledger that holds shares for farm.
func (r *Registry) Ledger(farm FarmID) (*Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.byFarm[farm]; ok {
		return l, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidFarmID, farm)
}

// Farms returns the farms with a dedicated ledger, sorted.
func (r *Registry) Farms() []FarmID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FarmID, 0, len(r.byFarm))
	for f := range r.byFarm {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Shares returns the balances of accounts in farm's ledger and that
// ledger's total supply from one snapshot.
func (r *Registry) Shares(farm uint64, accounts ...string) ([]uint64, uint64, error) {
	l, err := r.Ledger(FarmID(farm))
	if err != nil {
		return nil, 0, err
	}
	ids := make([]Account, len(accounts))
	for i, a := range accounts {
		ids[i] = Account(a)
	}
	balances, supply := l.Shares(ids...)
	return balances, supply, nil
}
