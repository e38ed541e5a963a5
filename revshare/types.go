package revshare

// Holding is one holder's share balance.
type Holding struct {
	Holder  string
	Balance uint64
}

// Payout is the amount owed to one holder.
type Payout struct {
	Holder string
	Amount uint64
}

// Preview is the result of distributing a payment over a set of holdings.
type Preview struct {
	Payouts     []Payout
	Distributed uint64 // sum of payouts
	Remainder   uint64 // payment left undistributed by floor rounding or absent holders
}
