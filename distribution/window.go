package distribution

// ReportYield records a farm's earnings for period and stages them for
// distribution. The caller must be a trusted oracle or the admin.
//
// The new report replaces the farm's current one immediately, even if
// holders have not claimed against it, and is claimable before a window is
// opened.
func (e *Engine) ReportYield(caller Account, farm FarmID, totalEarnings, period uint64) (err error) {
	defer e.observe("report_yield", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if caller == "" || (!e.st.Oracles[caller] && caller != e.st.Admin) {
		return ErrOracleNotTrusted
	}
	if farm == 0 {
		return ErrInvalidFarm
	}
	if totalEarnings == 0 {
		return ErrNoYield
	}

	prev, replaced := e.st.Reports[farm]
	prevDistributed := e.st.ReportDistributed[farm]
	d := &Delta{}
	d.setReport(farm, YieldReport{
		TotalEarnings: totalEarnings,
		Period:        period,
		Reporter:      caller,
		Height:        e.height.CurrentHeight(),
	})
	d.setPending(farm, totalEarnings)
	d.setReportDistributed(farm, 0)
	if err := e.commit(d); err != nil {
		return err
	}

	attrs := []any{"farm", farm, "period", period, "earnings", totalEarnings, "reporter", caller}
	if replaced {
		attrs = append(attrs, "replaced_period", prev.Period,
			"replaced_unclaimed", prev.TotalEarnings-prevDistributed)
	}
	if replaced && prevDistributed < prev.TotalEarnings {
		e.logger.Warn("yield report replaced with unclaimed earnings", attrs...)
		return nil
	}
	e.logger.Info("yield reported", attrs...)
	return nil
}

// StartDistribution opens farm's distribution window. Admin only.
func (e *Engine) StartDistribution(caller Account, farm FarmID) (err error) {
	defer e.observe("start_distribution", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if e.st.Active[farm] {
		return ErrDistributionActive
	}
	d := &Delta{}
	d.setActive(farm, true)
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("distribution started", "farm", farm, "pending", e.st.Pending[farm])
	return nil
}

// EndDistribution closes farm's window and records the period's history
// from the pending amount, which is then cleared. Admin only. Ending a
// window that is not open fails with ErrNoYield.
//
// The recorded earnings are the staged amount, not the sum of settled
// claims; the two differ when some holders never claimed.
func (e *Engine) EndDistribution(caller Account, farm FarmID, period uint64) (err error) {
	defer e.observe("end_distribution", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !e.st.Active[farm] {
		return ErrNoYield
	}

	key := PeriodKey{Farm: farm, Period: period}
	h := e.st.History[key]
	h.Earnings = e.st.Pending[farm]

	d := &Delta{}
	d.setActive(farm, false)
	d.setHistory(key, h)
	d.setPending(farm, 0)
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("distribution ended", "farm", farm, "period", period,
		"earnings", h.Earnings, "claimants", h.Claimants)
	return nil
}

// ResolveDispute attaches a signed adjustment to a farm period for
// off-chain reconciliation. Settled claims are never modified. Admin only.
func (e *Engine) ResolveDispute(caller Account, farm FarmID, period uint64, adjustment int64) (err error) {
	defer e.observe("resolve_dispute", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return ErrPaused
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	d := &Delta{}
	d.setDispute(PeriodKey{Farm: farm, Period: period}, Dispute{Resolved: true, Adjustment: adjustment})
	if err := e.commit(d); err != nil {
		return err
	}
	e.logger.Info("dispute resolved", "farm", farm, "period", period, "adjustment", adjustment)
	return nil
}
