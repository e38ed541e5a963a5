package distribution

import (
	"errors"
	"fmt"
	"math"

	"github.com/bitfsorg/libyield-go/revshare"
)

// ClaimDividends settles the caller's share of farm's current report:
// floor(totalEarnings * balance / totalSupply), read from the share source
// at call time. A claimant settles a farm at most once.
func (e *Engine) ClaimDividends(caller Account, farm FarmID) (claim Claim, err error) {
	defer e.observe("claim", &err)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Paused {
		return Claim{}, ErrPaused
	}
	report, ok := e.st.Reports[farm]
	if !ok {
		return Claim{}, ErrInvalidFarm
	}
	key := ClaimKey{Farm: farm, Claimant: caller}
	if e.st.Claims[key].Settled {
		return Claim{}, ErrAlreadyClaimed
	}

	share, err := e.shareOf(report, farm, caller)
	if err != nil {
		return Claim{}, err
	}
	if share == 0 {
		return Claim{}, ErrNoYield
	}
	distributed := e.st.ReportDistributed[farm]
	if share > report.TotalEarnings-distributed {
		return Claim{}, fmt.Errorf("%w: share %d exceeds unclaimed %d",
			ErrInsufficientFunds, share, report.TotalEarnings-distributed)
	}
	if e.st.TotalDistributed > math.MaxUint64-share {
		return Claim{}, ErrInsufficientFunds
	}

	claim = Claim{
		Amount:  share,
		Settled: true,
		Period:  report.Period,
		Height:  e.height.CurrentHeight(),
	}
	periodKey := PeriodKey{Farm: farm, Period: report.Period}
	h := e.st.History[periodKey]
	h.Claimants++
	total := e.st.TotalDistributed + share

	d := &Delta{TotalDistributed: &total}
	d.setClaim(key, claim)
	d.setReportDistributed(farm, distributed+share)
	d.setHistory(periodKey, h)
	if err := e.commit(d); err != nil {
		return Claim{}, err
	}

	e.logger.Info("dividends claimed", "farm", farm, "claimant", caller,
		"period", report.Period, "amount", share)
	e.metrics.Amount("claimed", share)
	return claim, nil
}

// shareOf computes the claimant's share from one snapshot of the ledger.
func (e *Engine) shareOf(report YieldReport, farm FarmID, claimant Account) (uint64, error) {
	balances, supply, err := e.source.Shares(uint64(farm), string(claimant))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFarm, err)
	}
	if len(balances) != 1 {
		return 0, fmt.Errorf("share source returned %d balances for 1 account", len(balances))
	}
	balance := balances[0]
	if supply == 0 || balance == 0 {
		return 0, nil
	}
	share, err := revshare.ProportionalShare(report.TotalEarnings, balance, supply)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}
	return share, nil
}

// BatchClaim claims each farm in order and stops at the first failure.
// Every successful claim is committed on its own and is not rolled back by
// a later failure; the settled claims and that failure are both returned.
func (e *Engine) BatchClaim(caller Account, farms []FarmID) ([]Claim, error) {
	claims := make([]Claim, 0, len(farms))
	for _, farm := range farms {
		c, err := e.ClaimDividends(caller, farm)
		if err != nil {
			return claims, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// PreviewPayouts computes what each holder would settle against farm's
// current report right now, without recording anything. Holders who
// already settled are reported with a zero payout.
func (e *Engine) PreviewPayouts(farm FarmID, holders []Account) (*revshare.Preview, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	report, ok := e.st.Reports[farm]
	if !ok {
		return nil, ErrInvalidFarm
	}
	accounts := make([]string, len(holders))
	for i, h := range holders {
		accounts[i] = string(h)
	}
	balances, supply, err := e.source.Shares(uint64(farm), accounts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFarm, err)
	}
	if len(balances) != len(holders) {
		return nil, fmt.Errorf("share source returned %d balances for %d accounts", len(balances), len(holders))
	}
	holdings := make([]revshare.Holding, len(holders))
	for i, h := range holders {
		holdings[i].Holder = accounts[i]
		if e.st.Claims[ClaimKey{Farm: farm, Claimant: h}].Settled {
			continue
		}
		holdings[i].Balance = balances[i]
	}

	preview, err := revshare.DistributeRevenue(report.TotalEarnings, holdings, supply)
	if errors.Is(err, revshare.ErrZeroTotalShares) {
		return nil, ErrNoYield
	}
	if err != nil {
		return nil, err
	}
	return preview, nil
}
