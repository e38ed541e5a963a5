package distribution

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin  Account = "admin"
	oracle Account = "oracle"
	alice  Account = "alice"
	bob    Account = "bob"
	mallet Account = "mallet"
)

var errUnknownFarm = errors.New("unknown farm")

type testHeight struct{ h atomic.Uint64 }

func (t *testHeight) CurrentHeight() uint64 { return t.h.Load() }

// shares is a mutable share table behind a MockShareSource.
type shares struct {
	mu       sync.Mutex
	balances map[uint64]map[string]uint64
	supply   map[uint64]uint64
}

func newShares() *shares {
	return &shares{
		balances: make(map[uint64]map[string]uint64),
		supply:   make(map[uint64]uint64),
	}
}

func (s *shares) set(farm uint64, account Account, balance, supply uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[farm] == nil {
		s.balances[farm] = make(map[string]uint64)
	}
	s.balances[farm][string(account)] = balance
	s.supply[farm] = supply
}

func (s *shares) source() *MockShareSource {
	return &MockShareSource{
		SharesFn: func(farm uint64, accounts ...string) ([]uint64, uint64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			supply, ok := s.supply[farm]
			if !ok {
				return nil, 0, errUnknownFarm
			}
			out := make([]uint64, len(accounts))
			for i, a := range accounts {
				out[i] = s.balances[farm][a]
			}
			return out, supply, nil
		},
	}
}

type fixture struct {
	engine *Engine
	shares *shares
	height *testHeight
	store  *MemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{shares: newShares(), height: &testHeight{}, store: NewMemStore()}
	f.height.h.Store(100)
	e, err := Open(Options{
		Admin:   admin,
		Oracles: []Account{oracle},
		Source:  f.shares.source(),
		Store:   f.store,
		Height:  f.height,
	})
	require.NoError(t, err)
	f.engine = e
	return f
}

// --- Open ---

func TestOpenValidation(t *testing.T) {
	src := newShares().source()
	h := &testHeight{}

	_, err := Open(Options{Admin: admin, Height: h})
	assert.ErrorIs(t, err, errNoSource)

	_, err = Open(Options{Admin: admin, Source: src})
	assert.ErrorIs(t, err, errNoHeight)

	_, err = Open(Options{Source: src, Height: h})
	assert.ErrorIs(t, err, errNoAdmin)

	_, err = Open(Options{Admin: admin, Oracles: []Account{""}, Source: src, Height: h})
	assert.ErrorIs(t, err, ErrOracleNotTrusted)
}

func TestOpenReloadsPersistedState(t *testing.T) {
	f := newFixture(t)
	f.shares.set(1, alice, 100, 1000)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 1))
	_, err := f.engine.ClaimDividends(alice, 1)
	require.NoError(t, err)

	reopened, err := Open(Options{Admin: "ignored", Source: f.shares.source(), Store: f.store, Height: f.height})
	require.NoError(t, err)
	assert.Equal(t, admin, reopened.Admin())
	assert.True(t, reopened.IsTrustedOracle(oracle))
	assert.Equal(t, uint64(1000), reopened.TotalDistributed())
	_, err = reopened.ClaimDividends(alice, 1)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

// --- Oracles ---

func TestOracleMembership(t *testing.T) {
	f := newFixture(t)
	e := f.engine

	assert.ErrorIs(t, e.AddTrustedOracle(alice, bob), ErrUnauthorized)
	assert.ErrorIs(t, e.RemoveTrustedOracle(alice, oracle), ErrUnauthorized)
	assert.ErrorIs(t, e.AddTrustedOracle(admin, ""), ErrOracleNotTrusted)

	require.NoError(t, e.AddTrustedOracle(admin, bob))
	require.NoError(t, e.AddTrustedOracle(admin, bob))
	assert.Equal(t, []Account{bob, oracle}, e.Oracles())

	require.NoError(t, e.RemoveTrustedOracle(admin, bob))
	require.NoError(t, e.RemoveTrustedOracle(admin, bob))
	assert.False(t, e.IsTrustedOracle(bob))
	assert.Equal(t, []Account{oracle}, e.Oracles())
}

// --- ReportYield ---

func TestReportYieldRejectsUntrustedOracle(t *testing.T) {
	f := newFixture(t)
	err := f.engine.ReportYield(mallet, 1, 10000, 1)
	assert.ErrorIs(t, err, ErrOracleNotTrusted)
	_, ok := f.engine.YieldReport(1)
	assert.False(t, ok)
	assert.Zero(t, f.engine.PendingDistribution(1))
}

func TestReportYield(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 1))

	r, ok := f.engine.YieldReport(1)
	require.True(t, ok)
	assert.Equal(t, YieldReport{TotalEarnings: 10000, Period: 1, Reporter: oracle, Height: 100}, r)
	assert.Equal(t, uint64(10000), f.engine.PendingDistribution(1))

	assert.ErrorIs(t, f.engine.ReportYield(oracle, 1, 0, 2), ErrNoYield)
	assert.ErrorIs(t, f.engine.ReportYield(oracle, 0, 5, 2), ErrInvalidFarm)

	// Admin may also report.
	require.NoError(t, f.engine.ReportYield(admin, 2, 50, 1))
}

func TestReportYieldOverwritesCurrentReport(t *testing.T) {
	f := newFixture(t)
	f.shares.set(1, alice, 500, 1000)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 1))
	_, err := f.engine.ClaimDividends(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), f.engine.FarmDistributed(1))

	require.NoError(t, f.engine.ReportYield(oracle, 1, 300, 2))
	r, _ := f.engine.YieldReport(1)
	assert.Equal(t, uint64(2), r.Period)
	assert.Equal(t, uint64(300), f.engine.PendingDistribution(1))
	assert.Zero(t, f.engine.FarmDistributed(1))
	assert.Equal(t, uint64(5000), f.engine.TotalDistributed())
}

// --- Windows ---

func TestDistributionWindowLifecycle(t *testing.T) {
	f := newFixture(t)
	e := f.engine
	f.shares.set(1, alice, 100, 1000)
	f.shares.set(1, bob, 300, 1000)

	require.NoError(t, e.ReportYield(oracle, 1, 10000, 7))
	assert.ErrorIs(t, e.StartDistribution(alice, 1), ErrUnauthorized)
	require.NoError(t, e.StartDistribution(admin, 1))
	assert.True(t, e.IsDistributionActive(1))
	assert.ErrorIs(t, e.StartDistribution(admin, 1), ErrDistributionActive)

	// Windows are per farm.
	require.NoError(t, e.StartDistribution(admin, 2))
	assert.True(t, e.IsDistributionActive(2))

	_, err := e.ClaimDividends(alice, 1)
	require.NoError(t, err)
	_, err = e.ClaimDividends(bob, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, e.EndDistribution(alice, 1, 7), ErrUnauthorized)
	require.NoError(t, e.EndDistribution(admin, 1, 7))
	assert.False(t, e.IsDistributionActive(1))
	assert.True(t, e.IsDistributionActive(2))
	assert.Zero(t, e.PendingDistribution(1))

	h, ok := e.History(1, 7)
	require.True(t, ok)
	assert.Equal(t, History{Earnings: 10000, Claimants: 2}, h)

	assert.ErrorIs(t, e.EndDistribution(admin, 1, 7), ErrNoYield)
}

func TestEndDistributionRecordsPendingNotClaimed(t *testing.T) {
	f := newFixture(t)
	f.shares.set(1, alice, 100, 1000)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 3))
	require.NoError(t, f.engine.StartDistribution(admin, 1))
	_, err := f.engine.ClaimDividends(alice, 1)
	require.NoError(t, err)
	require.NoError(t, f.engine.EndDistribution(admin, 1, 3))

	h, ok := f.engine.History(1, 3)
	require.True(t, ok)
	assert.Equal(t, uint64(10000), h.Earnings)
	assert.Equal(t, uint64(1), h.Claimants)
	assert.Equal(t, uint64(1000), f.engine.TotalDistributed())
}

// --- Disputes ---

func TestResolveDisputeDoesNotTouchClaims(t *testing.T) {
	f := newFixture(t)
	f.shares.set(1, alice, 100, 1000)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 1))
	claim, err := f.engine.ClaimDividends(alice, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.ResolveDispute(alice, 1, 1, -5), ErrUnauthorized)
	require.NoError(t, f.engine.ResolveDispute(admin, 1, 1, -250))

	d, ok := f.engine.Dispute(1, 1)
	require.True(t, ok)
	assert.Equal(t, Dispute{Resolved: true, Adjustment: -250}, d)

	after, ok := f.engine.Claim(1, alice)
	require.True(t, ok)
	assert.Equal(t, claim, after)
	assert.Equal(t, uint64(1000), f.engine.TotalDistributed())
}

// --- Administration ---

func TestPauseGatesMutations(t *testing.T) {
	f := newFixture(t)
	e := f.engine
	f.shares.set(1, alice, 100, 1000)
	require.NoError(t, e.ReportYield(oracle, 1, 10000, 1))

	assert.ErrorIs(t, e.SetPaused(alice, true), ErrUnauthorized)
	require.NoError(t, e.SetPaused(admin, true))
	assert.True(t, e.Paused())

	_, err := e.ClaimDividends(alice, 1)
	assert.ErrorIs(t, err, ErrPaused)
	assert.ErrorIs(t, e.ReportYield(oracle, 1, 1, 1), ErrPaused)
	assert.ErrorIs(t, e.StartDistribution(admin, 1), ErrPaused)
	assert.ErrorIs(t, e.EndDistribution(admin, 1, 1), ErrPaused)
	assert.ErrorIs(t, e.ResolveDispute(admin, 1, 1, 1), ErrPaused)
	assert.ErrorIs(t, e.AddTrustedOracle(admin, bob), ErrPaused)
	assert.ErrorIs(t, e.RemoveTrustedOracle(admin, oracle), ErrPaused)
	assert.ErrorIs(t, e.SetAdmin(admin, bob), ErrPaused)

	require.NoError(t, e.SetPaused(admin, false))
	_, err = e.ClaimDividends(alice, 1)
	require.NoError(t, err)
}

func TestSetAdmin(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.engine.SetAdmin(alice, bob), ErrUnauthorized)
	assert.ErrorIs(t, f.engine.SetAdmin(admin, ""), ErrUnauthorized)
	require.NoError(t, f.engine.SetAdmin(admin, bob))
	assert.Equal(t, bob, f.engine.Admin())
	assert.ErrorIs(t, f.engine.StartDistribution(admin, 1), ErrUnauthorized)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.shares.set(1, alice, 100, 1000)
	require.NoError(t, f.engine.ReportYield(oracle, 1, 10000, 1))

	f.store.FailApply = fmt.Errorf("disk full")
	_, err := f.engine.ClaimDividends(alice, 1)
	require.Error(t, err)
	_, ok := f.engine.Claim(1, alice)
	assert.False(t, ok)
	assert.Zero(t, f.engine.TotalDistributed())

	f.store.FailApply = nil
	claim, err := f.engine.ClaimDividends(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), claim.Amount)
}
