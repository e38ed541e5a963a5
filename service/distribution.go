package service

import (
	"github.com/bitfsorg/libyield-go/distribution"
	"github.com/bitfsorg/libyield-go/revshare"
)

// Distribution engine operations.

// AddTrustedOracle lets oracle report yield. Admin only.
func (c *Core) AddTrustedOracle(caller, oracle distribution.Account) Result[Empty] {
	return exec(c, "add_oracle", string(caller), func() error {
		return c.engine.AddTrustedOracle(caller, oracle)
	})
}

// RemoveTrustedOracle revokes oracle. Admin only.
func (c *Core) RemoveTrustedOracle(caller, oracle distribution.Account) Result[Empty] {
	return exec(c, "remove_oracle", string(caller), func() error {
		return c.engine.RemoveTrustedOracle(caller, oracle)
	})
}

// ReportYield records farm's earnings for period, replacing any earlier report.
func (c *Core) ReportYield(caller distribution.Account, farm distribution.FarmID, totalEarnings, period uint64) Result[Empty] {
	return exec(c, "report_yield", string(caller), func() error {
		return c.engine.ReportYield(caller, farm, totalEarnings, period)
	})
}

// StartDistribution opens the distribution window for farm. Admin only.
func (c *Core) StartDistribution(caller distribution.Account, farm distribution.FarmID) Result[Empty] {
	return exec(c, "start_distribution", string(caller), func() error {
		return c.engine.StartDistribution(caller, farm)
	})
}

// EndDistribution closes farm's window and records the period in history.
func (c *Core) EndDistribution(caller distribution.Account, farm distribution.FarmID, period uint64) Result[Empty] {
	return exec(c, "end_distribution", string(caller), func() error {
		return c.engine.EndDistribution(caller, farm, period)
	})
}

// ResolveDispute records an adjustment for a farm period. Admin only.
func (c *Core) ResolveDispute(caller distribution.Account, farm distribution.FarmID, period uint64, adjustment int64) Result[Empty] {
	return exec(c, "resolve_dispute", string(caller), func() error {
		return c.engine.ResolveDispute(caller, farm, period, adjustment)
	})
}

// ClaimDividends settles caller's share of farm's current report.
func (c *Core) ClaimDividends(caller distribution.Account, farm distribution.FarmID) Result[distribution.Claim] {
	return call(c, "claim", string(caller), func() (distribution.Claim, error) {
		return c.engine.ClaimDividends(caller, farm)
	})
}

// BatchClaim claims each farm in order. On failure Value holds the claims
// settled before the failing farm; those are not rolled back.
func (c *Core) BatchClaim(caller distribution.Account, farms []distribution.FarmID) Result[[]distribution.Claim] {
	return call(c, "batch_claim", string(caller), func() ([]distribution.Claim, error) {
		return c.engine.BatchClaim(caller, farms)
	})
}

// SetEnginePaused pauses or resumes the distribution engine.
func (c *Core) SetEnginePaused(caller distribution.Account, paused bool) Result[Empty] {
	return exec(c, "engine_set_paused", string(caller), func() error {
		return c.engine.SetPaused(caller, paused)
	})
}

// SetEngineAdmin hands engine administration to next.
func (c *Core) SetEngineAdmin(caller, next distribution.Account) Result[Empty] {
	return exec(c, "engine_set_admin", string(caller), func() error {
		return c.engine.SetAdmin(caller, next)
	})
}

// --- queries ---

func read[T any](c *Core, op string, fn func() T) Result[T] {
	return call(c, op, "", func() (T, error) { return fn(), nil })
}

// YieldReport returns farm's current report, or ErrInvalidFarm when the
// farm has none.
func (c *Core) YieldReport(farm distribution.FarmID) Result[distribution.YieldReport] {
	return call(c, "yield_report", "", func() (distribution.YieldReport, error) {
		r, ok := c.engine.YieldReport(farm)
		if !ok {
			return r, distribution.ErrInvalidFarm
		}
		return r, nil
	})
}

// Claim returns claimant's record for farm; an absent record is unsettled
// with a zero amount.
func (c *Core) Claim(farm distribution.FarmID, claimant distribution.Account) Result[distribution.Claim] {
	return read(c, "claim_of", func() distribution.Claim {
		cl, _ := c.engine.Claim(farm, claimant)
		return cl
	})
}

// IsTrustedOracle reports whether a may report yield.
func (c *Core) IsTrustedOracle(a distribution.Account) Result[bool] {
	return read(c, "is_oracle", func() bool { return c.engine.IsTrustedOracle(a) })
}

// Oracles returns the trusted oracles, sorted.
func (c *Core) Oracles() Result[[]distribution.Account] {
	return read(c, "oracles", c.engine.Oracles)
}

// History returns the record for a farm period; a missing one is zero.
func (c *Core) History(farm distribution.FarmID, period uint64) Result[distribution.History] {
	return read(c, "history", func() distribution.History {
		h, _ := c.engine.History(farm, period)
		return h
	})
}

// Dispute returns the dispute for a farm period; a missing one is zero.
func (c *Core) Dispute(farm distribution.FarmID, period uint64) Result[distribution.Dispute] {
	return read(c, "dispute", func() distribution.Dispute {
		d, _ := c.engine.Dispute(farm, period)
		return d
	})
}

// PendingDistribution returns farm's reported earnings awaiting distribution.
func (c *Core) PendingDistribution(farm distribution.FarmID) Result[uint64] {
	return read(c, "pending", func() uint64 { return c.engine.PendingDistribution(farm) })
}

// IsDistributionActive reports whether farm's window is open.
func (c *Core) IsDistributionActive(farm distribution.FarmID) Result[bool] {
	return read(c, "is_active", func() bool { return c.engine.IsDistributionActive(farm) })
}

// TotalDistributed returns the sum of all settled claims.
func (c *Core) TotalDistributed() Result[uint64] {
	return read(c, "total_distributed", c.engine.TotalDistributed)
}

// FarmDistributed returns what has been claimed against farm's current report.
func (c *Core) FarmDistributed(farm distribution.FarmID) Result[uint64] {
	return read(c, "farm_distributed", func() uint64 { return c.engine.FarmDistributed(farm) })
}

// EngineAdmin returns the engine administrator.
func (c *Core) EngineAdmin() Result[distribution.Account] {
	return read(c, "engine_admin", c.engine.Admin)
}

// EnginePaused reports whether the engine is paused.
func (c *Core) EnginePaused() Result[bool] {
	return read(c, "engine_paused", c.engine.Paused)
}

// PreviewPayouts reports what each holder would settle against farm's
// current report without recording anything.
func (c *Core) PreviewPayouts(farm distribution.FarmID, holders []distribution.Account) Result[*revshare.Preview] {
	return call(c, "preview_payouts", "", func() (*revshare.Preview, error) {
		return c.engine.PreviewPayouts(farm, holders)
	})
}
