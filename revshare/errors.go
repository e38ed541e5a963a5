package revshare

import "errors"

var (
	// ErrShareConservationViolation indicates holdings exceed the total supply.
	ErrShareConservationViolation = errors.New("revshare: share conservation violated")

	// ErrInsufficientPayment indicates the payment is too small to distribute.
	ErrInsufficientPayment = errors.New("revshare: insufficient payment for distribution")

	// ErrNoEntries indicates there are no holders to distribute to.
	ErrNoEntries = errors.New("revshare: no shareholder entries")

	// ErrZeroTotalShares indicates total shares is zero.
	ErrZeroTotalShares = errors.New("revshare: zero total shares")

	// ErrOverDistribution indicates payouts add up to more than the payment.
	ErrOverDistribution = errors.New("revshare: payouts exceed payment")
)
