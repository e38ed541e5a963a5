package distribution

// Account is an opaque caller or holder identity.
type Account string

// FarmID identifies an independent distribution pool. Zero is reserved.
type FarmID uint64

// YieldReport is the earnings reported for a farm's current period.
type YieldReport struct {
	TotalEarnings uint64
	Period        uint64
	Reporter      Account
	Height        uint64
}

// ClaimKey identifies a claimant's claim against a farm.
type ClaimKey struct {
	Farm     FarmID
	Claimant Account
}

// Claim is a claimant's settlement record. Once Settled it never changes.
type Claim struct {
	Amount  uint64
	Settled bool
	Period  uint64
	Height  uint64
}

// PeriodKey identifies one distribution period of a farm.
type PeriodKey struct {
	Farm   FarmID
	Period uint64
}

// History records what a period distributed.
type History struct {
	Earnings  uint64 // pending amount captured when the window closed
	Claimants uint64 // settled claims counted against the period
}

// Dispute is an audit annotation on a closed period. It never rewrites claims.
type Dispute struct {
	Resolved   bool
	Adjustment int64
}

// State is the full engine state.
type State struct {
	Admin            Account
	Paused           bool
	TotalDistributed uint64
	Oracles          map[Account]bool
	Reports          map[FarmID]YieldReport
	Pending          map[FarmID]uint64
	Active           map[FarmID]bool
	Claims           map[ClaimKey]Claim
	// ReportDistributed is what has been settled against each farm's
	// current report; it resets when a new report arrives.
	ReportDistributed map[FarmID]uint64
	History           map[PeriodKey]History
	Disputes          map[PeriodKey]Dispute
}

// NewState returns an empty state administered by admin.
func NewState(admin Account) *State {
	s := &State{Admin: admin}
	s.ensureMaps()
	return s
}

func (s *State) ensureMaps() {
	if s.Oracles == nil {
		s.Oracles = make(map[Account]bool)
	}
	if s.Reports == nil {
		s.Reports = make(map[FarmID]YieldReport)
	}
	if s.Pending == nil {
		s.Pending = make(map[FarmID]uint64)
	}
	if s.Active == nil {
		s.Active = make(map[FarmID]bool)
	}
	if s.Claims == nil {
		s.Claims = make(map[ClaimKey]Claim)
	}
	if s.ReportDistributed == nil {
		s.ReportDistributed = make(map[FarmID]uint64)
	}
	if s.History == nil {
		s.History = make(map[PeriodKey]History)
	}
	if s.Disputes == nil {
		s.Disputes = make(map[PeriodKey]Dispute)
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		Admin:            s.Admin,
		Paused:           s.Paused,
		TotalDistributed: s.TotalDistributed,
	}
	c.ensureMaps()
	for k, v := range s.Oracles {
		c.Oracles[k] = v
	}
	for k, v := range s.Reports {
		c.Reports[k] = v
	}
	for k, v := range s.Pending {
		c.Pending[k] = v
	}
	for k, v := range s.Active {
		c.Active[k] = v
	}
	for k, v := range s.Claims {
		c.Claims[k] = v
	}
	for k, v := range s.ReportDistributed {
		c.ReportDistributed[k] = v
	}
	for k, v := range s.History {
		c.History[k] = v
	}
	for k, v := range s.Disputes {
		c.Disputes[k] = v
	}
	return c
}
