package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// Correlated-exposure dimensions, in evaluation order
const (
	DimensionSector     = "sector"
	DimensionAssetClass = "asset_class"
	DimensionGeography  = "geography"
)

// proximityWarnRatio is the share of a dimension's limit at which a
// non-breaching projection still draws a warning
var proximityWarnRatio = decimal.NewFromFloat(0.80)

// Exposure is one dimension's correlated risk after projecting the candidate
type Exposure struct {
	Dimension    string          `json:"dimension"`
	Value        string          `json:"value"`
	ExistingPct  decimal.Decimal `json:"existing_pct"`
	ProjectedPct decimal.Decimal `json:"projected_pct"`
	LimitPct     decimal.Decimal `json:"limit_pct"`
	Breached     bool            `json:"breached"`
}

// CorrelationAssessment holds every evaluated dimension. Failed is set only
// in strict mode, to the first breached dimension in evaluation order.
type CorrelationAssessment struct {
	Mode      wyckoff.EnforcementMode `json:"mode"`
	Exposures []Exposure              `json:"exposures"`
	Breaches  []Exposure              `json:"breaches,omitempty"`
	Warnings  []Advisory              `json:"warnings,omitempty"`
	Failed    *Exposure               `json:"failed,omitempty"`
}

// CorrelationValidator bounds exposure concentration across sectors, asset
// classes, and geographies. It accounts per campaign, so a multi-entry thesis
// counts once at its total campaign risk instead of once per position.
type CorrelationValidator struct{}

// NewCorrelationValidator creates a correlation validator
func NewCorrelationValidator() *CorrelationValidator {
	return &CorrelationValidator{}
}

// Assess projects the candidate's risk onto each correlation dimension and
// compares against the snapshot's configured limits. Every dimension is
// evaluated even after a breach is found. A projection exactly at a limit
// passes. Mode overrides the snapshot's enforcement when non-empty; in
// permissive mode breaches demote to warnings and Failed stays nil.
// Dimensions at or above 80% of their limit warn in either mode.
func (v *CorrelationValidator) Assess(signal wyckoff.TradeSignal, ctx *wyckoff.PortfolioContext, candidateRiskPct decimal.Decimal, mode wyckoff.EnforcementMode) (*CorrelationAssessment, error) {
	if ctx == nil {
		return nil, NewConfigError("portfolio", "portfolio context is required")
	}

	cfg := ctx.Correlation.WithDefaults()
	if mode == "" {
		mode = cfg.Enforcement
	}

	candidate, err := classify(ctx, signal.Symbol)
	if err != nil {
		return nil, err
	}

	assessment := &CorrelationAssessment{Mode: mode}

	dims := []struct {
		name  string
		value string
		limit decimal.Decimal
	}{
		{DimensionSector, candidate.Sector, cfg.MaxSectorPct},
		{DimensionAssetClass, candidate.AssetClass, cfg.MaxAssetClassPct},
		{DimensionGeography, candidate.Geography, cfg.MaxGeographyPct},
	}

	for _, dim := range dims {
		if dim.name == DimensionGeography && (dim.limit.Sign() < 0 || dim.value == "") {
			continue
		}

		exp, err := v.exposure(ctx, dim.name, dim.value, dim.limit, candidateRiskPct)
		if err != nil {
			return nil, err
		}
		assessment.Exposures = append(assessment.Exposures, exp)

		switch {
		case exp.Breached:
			assessment.Breaches = append(assessment.Breaches, exp)
			if mode == wyckoff.EnforcementStrict {
				if assessment.Failed == nil {
					failed := exp
					assessment.Failed = &failed
				}
			} else {
				assessment.Warnings = append(assessment.Warnings, Advisory{
					Code:    WarnCorrelationBreach,
					Message: fmt.Sprintf("%s, admitted in permissive mode", breachMessage(exp)),
				})
			}
		case exp.ProjectedPct.GreaterThanOrEqual(exp.LimitPct.Mul(proximityWarnRatio)):
			assessment.Warnings = append(assessment.Warnings, Advisory{
				Code: WarnCorrelationProximity,
				Message: fmt.Sprintf("correlated %s exposure %s%% is at %s%% of its %s%% limit (%s)",
					exp.Dimension, exp.ProjectedPct.StringFixed(2),
					exp.ProjectedPct.Div(exp.LimitPct).Mul(hundred).StringFixed(0),
					exp.LimitPct.StringFixed(2), exp.Value),
			})
		}
	}

	return assessment, nil
}

// exposure sums the total risk of open campaigns sharing the candidate's
// value in one dimension and projects the candidate's risk on top
func (v *CorrelationValidator) exposure(ctx *wyckoff.PortfolioContext, dim, value string, limit, candidateRiskPct decimal.Decimal) (Exposure, error) {
	exp := Exposure{Dimension: dim, Value: value, LimitPct: limit}

	for _, c := range ctx.ActiveCampaigns {
		info, err := classify(ctx, c.Symbol)
		if err != nil {
			return Exposure{}, err
		}
		var match string
		switch dim {
		case DimensionSector:
			match = info.Sector
		case DimensionAssetClass:
			match = info.AssetClass
		case DimensionGeography:
			match = info.Geography
		}
		if match == value {
			exp.ExistingPct = exp.ExistingPct.Add(c.TotalRiskPct)
		}
	}

	exp.ProjectedPct = exp.ExistingPct.Add(candidateRiskPct)
	exp.Breached = exp.ProjectedPct.GreaterThan(limit)
	return exp, nil
}

// classify resolves a symbol's correlation classification. Sector and asset
// class are mandatory; geography is optional.
func classify(ctx *wyckoff.PortfolioContext, symbol string) (wyckoff.SectorInfo, error) {
	info, ok := ctx.SectorFor(symbol)
	if !ok {
		return wyckoff.SectorInfo{}, ConfigErrorf("sector_map", "no sector classification for symbol %s", symbol)
	}
	if info.Sector == "" || info.AssetClass == "" {
		return wyckoff.SectorInfo{}, ConfigErrorf("sector_map", "incomplete sector classification for symbol %s", symbol)
	}
	return info, nil
}

func breachMessage(exp Exposure) string {
	return fmt.Sprintf("correlated %s exposure %s%% exceeds %s%% limit (%s)",
		exp.Dimension, exp.ProjectedPct.StringFixed(2), exp.LimitPct.StringFixed(2), exp.Value)
}
