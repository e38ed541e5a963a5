package revshare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ProportionalShare tests ---

func TestProportionalShare(t *testing.T) {
	tests := []struct {
		name                   string
		total, balance, supply uint64
		want                   uint64
	}{
		{"ten percent", 10000, 100, 1000, 1000},
		{"floor rounding", 10, 1, 3, 3},
		{"zero balance", 10000, 0, 1000, 0},
		{"dust rounds to zero", 9, 1, 10, 0},
		{"whole supply", 777, 1000, 1000, 777},
		{"no overflow", math.MaxUint64, math.MaxUint64 / 2, math.MaxUint64, math.MaxUint64 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProportionalShare(tt.total, tt.balance, tt.supply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProportionalShareErrors(t *testing.T) {
	_, err := ProportionalShare(100, 1, 0)
	assert.ErrorIs(t, err, ErrZeroTotalShares)

	_, err = ProportionalShare(100, 11, 10)
	assert.ErrorIs(t, err, ErrShareConservationViolation)
}

// --- DistributeRevenue tests ---

func TestDistributeRevenue(t *testing.T) {
	holdings := []Holding{
		{Holder: "a", Balance: 1},
		{Holder: "b", Balance: 1},
		{Holder: "c", Balance: 1},
	}
	preview, err := DistributeRevenue(100, holdings, 3)
	require.NoError(t, err)
	require.Len(t, preview.Payouts, 3)
	for _, p := range preview.Payouts {
		assert.Equal(t, uint64(33), p.Amount)
	}
	assert.Equal(t, uint64(99), preview.Distributed)
	assert.Equal(t, uint64(1), preview.Remainder)
	require.NoError(t, ValidatePayoutConservation(100, preview.Payouts))
}

func TestDistributeRevenuePartialHolders(t *testing.T) {
	preview, err := DistributeRevenue(10000, []Holding{{Holder: "x", Balance: 100}}, 1000)
	require.NoError(t, err)
	assert.Equal(t, []Payout{{Holder: "x", Amount: 1000}}, preview.Payouts)
	assert.Equal(t, uint64(9000), preview.Remainder)
}

func TestDistributeRevenueErrors(t *testing.T) {
	one := []Holding{{Holder: "a", Balance: 1}}

	_, err := DistributeRevenue(0, one, 1)
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	_, err = DistributeRevenue(1, nil, 1)
	assert.ErrorIs(t, err, ErrNoEntries)

	_, err = DistributeRevenue(1, one, 0)
	assert.ErrorIs(t, err, ErrZeroTotalShares)

	_, err = DistributeRevenue(1, []Holding{{Holder: "a", Balance: 2}, {Holder: "b", Balance: 2}}, 3)
	assert.ErrorIs(t, err, ErrShareConservationViolation)
}

// --- Validation tests ---

func TestValidatePayoutConservation(t *testing.T) {
	require.NoError(t, ValidatePayoutConservation(10, []Payout{{Amount: 4}, {Amount: 6}}))
	err := ValidatePayoutConservation(10, []Payout{{Amount: 4}, {Amount: 7}})
	assert.ErrorIs(t, err, ErrOverDistribution)
}
