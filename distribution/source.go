package distribution

// ShareSource is the read-only view of the share ledger the engine needs.
// Shares returns the balances of accounts in farm's ledger together with
// that ledger's total supply, all read from one consistent snapshot.
type ShareSource interface {
	Shares(farm uint64, accounts ...string) (balances []uint64, supply uint64, err error)
}

// MockShareSource is a test double for ShareSource.
// SharesFn must be set before Shares is called.
type MockShareSource struct {
	SharesFn func(farm uint64, accounts ...string) ([]uint64, uint64, error)
}

// Shares calls SharesFn.
func (m *MockShareSource) Shares(farm uint64, accounts ...string) ([]uint64, uint64, error) {
	return m.SharesFn(farm, accounts...)
}
