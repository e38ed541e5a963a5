package revshare

import (
	"fmt"
	"math/bits"
)

// ProportionalShare returns floor(total * balance / supply) computed with a
// 128-bit intermediate product, so it never overflows for balance <= supply.
func ProportionalShare(total, balance, supply uint64) (uint64, error) {
	if supply == 0 {
		return 0, ErrZeroTotalShares
	}
	if balance > supply {
		return 0, fmt.Errorf("%w: balance %d > supply %d", ErrShareConservationViolation, balance, supply)
	}
	hi, lo := bits.Mul64(total, balance)
	q, _ := bits.Div64(hi, lo, supply)
	return q, nil
}
