package revshare

import "fmt"

// DistributeRevenue calculates per-holder payouts of totalPayment.
// Each holder receives the floor of its proportional share, exactly what an
// independent claim would settle; the rounding dust stays in Remainder.
func DistributeRevenue(totalPayment uint64, holdings []Holding, totalShares uint64) (*Preview, error) {
	if totalPayment == 0 {
		return nil, ErrInsufficientPayment
	}
	if len(holdings) == 0 {
		return nil, ErrNoEntries
	}
	if totalShares == 0 {
		return nil, ErrZeroTotalShares
	}
	if err := ValidateShareConservation(holdings, totalShares); err != nil {
		return nil, err
	}

	preview := &Preview{Payouts: make([]Payout, len(holdings))}
	for i, h := range holdings {
		amount, err := ProportionalShare(totalPayment, h.Balance, totalShares)
		if err != nil {
			return nil, fmt.Errorf("holder %q: %w", h.Holder, err)
		}
		preview.Payouts[i] = Payout{Holder: h.Holder, Amount: amount}
		preview.Distributed += amount
	}
	preview.Remainder = totalPayment - preview.Distributed
	return preview, nil
}
