package risk

import "github.com/shopspring/decimal"

// Default engine-level risk limits, percent of account equity
var (
	DefaultPerTradeMaxPct = decimal.NewFromInt(2)
	DefaultCampaignMaxPct = decimal.NewFromInt(5)
	DefaultHeatCapPct     = decimal.NewFromInt(15)
	DefaultRiskPct        = decimal.NewFromInt(1)
)

// Limits is the engine-level risk policy. All values are percent points of
// account equity; zero-valued fields inherit the defaults.
type Limits struct {
	// PerTradeMaxPct caps the risk a single trade may request
	PerTradeMaxPct decimal.Decimal `json:"per_trade_max_pct"`
	// CampaignMaxPct caps cumulative risk across entries of one campaign
	CampaignMaxPct decimal.Decimal `json:"campaign_max_pct"`
	// HeatCapPct is the absolute portfolio heat ceiling no adjustment can lift
	HeatCapPct decimal.Decimal `json:"heat_cap_pct"`
	// DefaultRiskPct is the risk applied when a request does not specify one
	DefaultRiskPct decimal.Decimal `json:"default_risk_pct"`
}

// DefaultLimits returns the standard engine limits
func DefaultLimits() Limits {
	return Limits{
		PerTradeMaxPct: DefaultPerTradeMaxPct,
		CampaignMaxPct: DefaultCampaignMaxPct,
		HeatCapPct:     DefaultHeatCapPct,
		DefaultRiskPct: DefaultRiskPct,
	}
}

// WithDefaults returns a copy with zero-valued fields replaced by defaults
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.PerTradeMaxPct.IsZero() {
		l.PerTradeMaxPct = d.PerTradeMaxPct
	}
	if l.CampaignMaxPct.IsZero() {
		l.CampaignMaxPct = d.CampaignMaxPct
	}
	if l.HeatCapPct.IsZero() {
		l.HeatCapPct = d.HeatCapPct
	}
	if l.DefaultRiskPct.IsZero() {
		l.DefaultRiskPct = d.DefaultRiskPct
	}
	return l
}

// Validate checks limit ranges and their relative ordering
func (l Limits) Validate() error {
	if l.PerTradeMaxPct.Sign() <= 0 || l.PerTradeMaxPct.GreaterThan(hundred) {
		return ConfigErrorf("per_trade_max_pct", "must be within (0, 100], got: %s", l.PerTradeMaxPct)
	}
	if l.CampaignMaxPct.Sign() <= 0 || l.CampaignMaxPct.GreaterThan(hundred) {
		return ConfigErrorf("campaign_max_pct", "must be within (0, 100], got: %s", l.CampaignMaxPct)
	}
	if l.HeatCapPct.Sign() <= 0 || l.HeatCapPct.GreaterThan(hundred) {
		return ConfigErrorf("heat_cap_pct", "must be within (0, 100], got: %s", l.HeatCapPct)
	}
	if l.DefaultRiskPct.Sign() <= 0 {
		return ConfigErrorf("default_risk_pct", "must be positive, got: %s", l.DefaultRiskPct)
	}
	if l.DefaultRiskPct.GreaterThan(l.PerTradeMaxPct) {
		return ConfigErrorf("default_risk_pct", "must not exceed the per-trade maximum %s, got: %s", l.PerTradeMaxPct, l.DefaultRiskPct)
	}
	if l.PerTradeMaxPct.GreaterThan(l.HeatCapPct) {
		return ConfigErrorf("per_trade_max_pct", "must not exceed the heat cap %s, got: %s", l.HeatCapPct, l.PerTradeMaxPct)
	}
	return nil
}
