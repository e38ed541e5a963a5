package ledger

// Account is an opaque caller or holder identity.
type Account string

// FarmID distinguishes independent distribution pools. Zero is reserved.
type FarmID uint64

// DefaultMaxMetadataLen bounds mint metadata when no explicit limit is set.
const DefaultMaxMetadataLen = 256

// AllowanceKey identifies the allowance an owner granted a spender.
type AllowanceKey struct {
	Owner   Account
	Spender Account
}

// LockKey identifies an owner's lock for one farm.
type LockKey struct {
	Owner Account
	Farm  FarmID
}

// Lock is an amount moved out of spendable balance until UnlockHeight.
type Lock struct {
	Amount       uint64
	UnlockHeight uint64
}

// MintEntry is one element of a batch mint.
type MintEntry struct {
	Recipient Account
	Amount    uint64
	Metadata  []byte
}

// State is the full ledger state. Balances hold spendable amounts only.
type State struct {
	Admin       Account
	Paused      bool
	TotalSupply uint64
	Balances    map[Account]uint64
	Allowances  map[AllowanceKey]uint64
	Locks       map[LockKey]Lock
	Minters     map[Account]bool
}

// NewState returns an empty state administered by admin.
func NewState(admin Account) *State {
	return &State{
		Admin:      admin,
		Balances:   make(map[Account]uint64),
		Allowances: make(map[AllowanceKey]uint64),
		Locks:      make(map[LockKey]Lock),
		Minters:    make(map[Account]bool),
	}
}

func (s *State) ensureMaps() {
	if s.Balances == nil {
		s.Balances = make(map[Account]uint64)
	}
	if s.Allowances == nil {
		s.Allowances = make(map[AllowanceKey]uint64)
	}
	if s.Locks == nil {
		s.Locks = make(map[LockKey]Lock)
	}
	if s.Minters == nil {
		s.Minters = make(map[Account]bool)
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		Admin:       s.Admin,
		Paused:      s.Paused,
		TotalSupply: s.TotalSupply,
		Balances:    make(map[Account]uint64, len(s.Balances)),
		Allowances:  make(map[AllowanceKey]uint64, len(s.Allowances)),
		Locks:       make(map[LockKey]Lock, len(s.Locks)),
		Minters:     make(map[Account]bool, len(s.Minters)),
	}
	for k, v := range s.Balances {
		c.Balances[k] = v
	}
	for k, v := range s.Allowances {
		c.Allowances[k] = v
	}
	for k, v := range s.Locks {
		c.Locks[k] = v
	}
	for k, v := range s.Minters {
		c.Minters[k] = v
	}
	return c
}
