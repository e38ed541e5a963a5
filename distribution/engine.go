// Package distribution implements the proportional yield distribution
// engine: trusted-oracle yield reports, per-farm distribution windows,
// exactly-once claim settlement, period history and dispute annotations.
//
// The engine reads share balances only through a ShareSource. It never
// moves value; a settled Claim is the authorization for an external
// payment primitive to release that amount from escrow.
package distribution

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bitfsorg/libyield-go/metrics"
)

const component = "distribution"

var (
	errNoAdmin  = errors.New("distribution: admin identity required")
	errNoSource = errors.New("distribution: share source required")
	errNoHeight = errors.New("distribution: height source required")
)

// HeightSource reports the current chain height.
type HeightSource interface {
	CurrentHeight() uint64
}

// Options configures an Engine.
type Options struct {
	Admin   Account   // initial admin, used only when the store is empty
	Oracles []Account // initial trusted oracles, used only when the store is empty
	Source  ShareSource
	Store   Store
	Height  HeightSource
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Engine is the distribution engine guarded by a single mutex.
type Engine struct {
	mu      sync.RWMutex
	st      *State
	source  ShareSource
	store   Store
	height  HeightSource
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Open loads the engine from opts.Store, bootstrapping admin and oracles on
// an empty store.
func Open(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, errNoSource
	}
	if opts.Height == nil {
		return nil, errNoHeight
	}
	if opts.Store == nil {
		opts.Store = NewMemStore()
	}
	st, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("distribution: load state: %w", err)
	}
	st.ensureMaps()

	e := &Engine{
		st:      st,
		source:  opts.Source,
		store:   opts.Store,
		height:  opts.Height,
		logger:  resolveLogger(opts.Logger).With("component", component),
		metrics: opts.Metrics,
	}

	if st.Admin == "" {
		if opts.Admin == "" {
			return nil, errNoAdmin
		}
		d := &Delta{}
		admin := opts.Admin
		d.Admin = &admin
		for _, o := range opts.Oracles {
			if o == "" {
				return nil, ErrOracleNotTrusted
			}
			d.setOracle(o, true)
		}
		if err := e.commit(d); err != nil {
			return nil, err
		}
		e.logger.Info("engine initialized", "admin", admin, "oracles", len(opts.Oracles))
	}
	return e, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// commit persists d and then applies it in memory. Callers hold e.mu.
func (e *Engine) commit(d *Delta) error {
	if d.Empty() {
		return nil
	}
	if err := e.store.Apply(d); err != nil {
		e.logger.Error("persist delta failed", "error", err)
		return fmt.Errorf("distribution: persist: %w", err)
	}
	d.Apply(e.st)
	return nil
}

func (e *Engine) observe(op string, err *error) {
	e.metrics.Op(component, op, *err)
}

func (e *Engine) requireAdmin(caller Account) error {
	if caller == "" || caller != e.st.Admin {
		return ErrUnauthorized
	}
	return nil
}

// AddTrustedOracle allows oracle to report yield. Admin only; idempotent.
func (e *Engine) AddTrustedOracle(caller, oracle Account) (err error) {
	defer e.observe("add_oracle", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if oracle == "" {
		return ErrOracleNotTrusted
	}
	if e.st.Oracles[oracle] {
		return nil
	}
	d := &Delta{}
	d.setOracle(oracle, true)
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("oracle trusted", "oracle", oracle)
	return nil
}

// RemoveTrustedOracle revokes oracle. Admin only; idempotent.
func (e *Engine) RemoveTrustedOracle(caller, oracle Account) (err error) {
	defer e.observe("remove_oracle", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !e.st.Oracles[oracle] {
		return nil
	}
	d := &Delta{}
	d.setOracle(oracle, false)
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("oracle revoked", "oracle", oracle)
	return nil
}

// SetPaused sets the pause flag. Admin only, and allowed while paused.
func (e *Engine) SetPaused(caller Account, paused bool) (err error) {
	defer e.observe("set_paused", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	d := &Delta{Paused: &paused}
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("pause flag set", "paused", paused)
	return nil
}

// SetAdmin hands administration to next. Admin only.
func (e *Engine) SetAdmin(caller, next Account) (err error) {
	defer e.observe("set_admin", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if next == "" {
		return ErrUnauthorized
	}
	d := &Delta{Admin: &next}
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("admin changed", "from", caller, "to", next)
	return nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// IsTrustedOracle reports whether a may report yield.
func (e *Engine) IsTrustedOracle(a Account) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Oracles[a]
}

// Oracles returns the trusted oracles in sorted order.
func (e *Engine) Oracles() []Account {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Account, 0, len(e.st.Oracles))
	for o := range e.st.Oracles {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// YieldReport returns the farm's current yield report.
func (e *Engine) YieldReport(farm FarmID) (YieldReport, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.st.Reports[farm]
	return r, ok
}

// Claim returns the claimant's claim record for farm.
func (e *Engine) Claim(farm FarmID, claimant Account) (Claim, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.st.Claims[ClaimKey{Farm: farm, Claimant: claimant}]
	return c, ok
}

// History returns the recorded history of a farm period.
func (e *Engine) History(farm FarmID, period uint64) (History, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.History[PeriodKey{Farm: farm, Period: period}]
	return h, ok
}

// Dispute returns the dispute record of a farm period.
func (e *Engine) Dispute(farm FarmID, period uint64) (Dispute, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.st.Disputes[PeriodKey{Farm: farm, Period: period}]
	return d, ok
}

// PendingDistribution returns the amount staged for farm.
func (e *Engine) PendingDistribution(farm FarmID) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Pending[farm]
}

// IsDistributionActive reports whether farm's window is open.
func (e *Engine) IsDistributionActive(farm FarmID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Active[farm]
}

// TotalDistributed returns the sum of every settled claim.
func (e *Engine) TotalDistributed() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.TotalDistributed
}

// FarmDistributed returns what has been settled against farm's current report.
func (e *Engine) FarmDistributed(farm FarmID) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.ReportDistributed[farm]
}

// Admin returns the current admin.
func (e *Engine) Admin() Account {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Admin
}

// Paused reports whether mutations are rejected.
func (e *Engine) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Paused
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Clone()
}
