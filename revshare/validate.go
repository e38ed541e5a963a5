package revshare

import "fmt"

// ValidateShareConservation checks that the holdings do not add up to more
// than the total supply.
func ValidateShareConservation(holdings []Holding, totalShares uint64) error {
	var sum uint64
	for _, h := range holdings {
		if h.Balance > totalShares-sum {
			return fmt.Errorf("%w: holdings exceed supply %d", ErrShareConservationViolation, totalShares)
		}
		sum += h.Balance
	}
	return nil
}

// ValidatePayoutConservation checks that payouts never exceed the payment.
func ValidatePayoutConservation(totalPayment uint64, payouts []Payout) error {
	var sum uint64
	for _, p := range payouts {
		if p.Amount > totalPayment-sum {
			return fmt.Errorf("%w: payment=%d", ErrOverDistribution, totalPayment)
		}
		sum += p.Amount
	}
	return nil
}
