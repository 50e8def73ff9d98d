package risk

import (
	"github.com/shopspring/decimal"
)

// SizeResult is the final position size for an approved trade. Quantity is a
// whole number of units; RiskAmount is the capital actually at risk after
// flooring, so it never exceeds RiskBudget.
type SizeResult struct {
	RiskPct          decimal.Decimal `json:"risk_pct"`
	RiskBudget       decimal.Decimal `json:"risk_budget"`
	UnitRisk         decimal.Decimal `json:"unit_risk"`
	Quantity         decimal.Decimal `json:"quantity"`
	RiskAmount       decimal.Decimal `json:"risk_amount"`
	EffectiveRiskPct decimal.Decimal `json:"effective_risk_pct"`
}

// PositionSizer converts an approved risk percentage into a whole-unit
// position quantity
type PositionSizer struct {
	perTradeMaxPct decimal.Decimal
}

// NewPositionSizer creates a sizer bounded by the per-trade risk ceiling
func NewPositionSizer(limits Limits) *PositionSizer {
	return &PositionSizer{perTradeMaxPct: limits.PerTradeMaxPct}
}

// Size computes quantity = floor(riskBudget / unitRisk) where the budget is
// equity times the smaller of the requested risk and the per-trade ceiling.
// A zero quantity is a valid result; the caller decides whether an
// unfillable budget rejects the trade.
func (s *PositionSizer) Size(equity, entry, stopPrice, requestedRiskPct decimal.Decimal) (*SizeResult, error) {
	if equity.Sign() <= 0 {
		return nil, ConfigErrorf("equity", "account equity must be positive, got: %s", equity)
	}
	if requestedRiskPct.Sign() <= 0 {
		return nil, ConfigErrorf("risk_pct", "requested risk must be positive, got: %s", requestedRiskPct)
	}

	unitRisk := entry.Sub(stopPrice).Abs()
	if unitRisk.Sign() <= 0 {
		return nil, ConfigErrorf("stop", "stop %s must not equal entry %s", stopPrice, entry)
	}

	riskPct := requestedRiskPct
	if riskPct.GreaterThan(s.perTradeMaxPct) {
		riskPct = s.perTradeMaxPct
	}

	budget := equity.Mul(riskPct).Div(hundred)
	quantity := budget.Div(unitRisk).Floor()
	amount := quantity.Mul(unitRisk)

	return &SizeResult{
		RiskPct:          riskPct,
		RiskBudget:       budget,
		UnitRisk:         unitRisk,
		Quantity:         quantity,
		RiskAmount:       amount,
		EffectiveRiskPct: amount.Div(equity).Mul(hundred),
	}, nil
}
