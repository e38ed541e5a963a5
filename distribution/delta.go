package distribution

// Delta is the set of records changed by one operation. Zero pending and
// distributed amounts, false flags and nil reports mean the record is
// removed. A Store must apply a Delta in full or not at all.
type Delta struct {
	Admin             *Account
	Paused            *bool
	TotalDistributed  *uint64
	Oracles           map[Account]bool
	Reports           map[FarmID]*YieldReport
	Pending           map[FarmID]uint64
	Active            map[FarmID]bool
	Claims            map[ClaimKey]Claim
	ReportDistributed map[FarmID]uint64
	History           map[PeriodKey]History
	Disputes          map[PeriodKey]Dispute
}

// Empty reports whether the delta changes nothing.
func (d *Delta) Empty() bool {
	return d.Admin == nil && d.Paused == nil && d.TotalDistributed == nil &&
		len(d.Oracles) == 0 && len(d.Reports) == 0 && len(d.Pending) == 0 &&
		len(d.Active) == 0 && len(d.Claims) == 0 && len(d.ReportDistributed) == 0 &&
		len(d.History) == 0 && len(d.Disputes) == 0
}

// Apply writes the delta into s.
func (d *Delta) Apply(s *State) {
	s.ensureMaps()
	if d.Admin != nil {
		s.Admin = *d.Admin
	}
	if d.Paused != nil {
		s.Paused = *d.Paused
	}
	if d.TotalDistributed != nil {
		s.TotalDistributed = *d.TotalDistributed
	}
	for k, v := range d.Oracles {
		if v {
			s.Oracles[k] = true
		} else {
			delete(s.Oracles, k)
		}
	}
	for k, v := range d.Reports {
		if v == nil {
			delete(s.Reports, k)
		} else {
			s.Reports[k] = *v
		}
	}
	for k, v := range d.Pending {
		if v == 0 {
			delete(s.Pending, k)
		} else {
			s.Pending[k] = v
		}
	}
	for k, v := range d.Active {
		if v {
			s.Active[k] = true
		} else {
			delete(s.Active, k)
		}
	}
	for k, v := range d.Claims {
		s.Claims[k] = v
	}
	for k, v := range d.ReportDistributed {
		if v == 0 {
			delete(s.ReportDistributed, k)
		} else {
			s.ReportDistributed[k] = v
		}
	}
	for k, v := range d.History {
		s.History[k] = v
	}
	for k, v := range d.Disputes {
		s.Disputes[k] = v
	}
}

func (d *Delta) setOracle(a Account, on bool) {
	if d.Oracles == nil {
		d.Oracles = make(map[Account]bool)
	}
	d.Oracles[a] = on
}

func (d *Delta) setReport(f FarmID, r YieldReport) {
	if d.Reports == nil {
		d.Reports = make(map[FarmID]*YieldReport)
	}
	d.Reports[f] = &r
}

func (d *Delta) setPending(f FarmID, v uint64) {
	if d.Pending == nil {
		d.Pending = make(map[FarmID]uint64)
	}
	d.Pending[f] = v
}

func (d *Delta) setActive(f FarmID, on bool) {
	if d.Active == nil {
		d.Active = make(map[FarmID]bool)
	}
	d.Active[f] = on
}

func (d *Delta) setClaim(k ClaimKey, c Claim) {
	if d.Claims == nil {
		d.Claims = make(map[ClaimKey]Claim)
	}
	d.Claims[k] = c
}

func (d *Delta) setReportDistributed(f FarmID, v uint64) {
	if d.ReportDistributed == nil {
		d.ReportDistributed = make(map[FarmID]uint64)
	}
	d.ReportDistributed[f] = v
}

func (d *Delta) setHistory(k PeriodKey, h History) {
	if d.History == nil {
		d.History = make(map[PeriodKey]History)
	}
	d.History[k] = h
}

func (d *Delta) setDispute(k PeriodKey, v Dispute) {
	if d.Disputes == nil {
		d.Disputes = make(map[PeriodKey]Dispute)
	}
	d.Disputes[k] = v
}
