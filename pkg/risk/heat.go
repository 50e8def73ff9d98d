package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// Phase-adaptive heat limits. The applied limit starts from the majority
// phase of the open book and composes with volume relief and the absolute
// ceiling rather than replacing them.
var (
	phaseLimitEarly  = decimal.NewFromInt(8)  // accumulation phases A and B
	phaseLimitLate   = decimal.NewFromInt(12) // phases C and D
	phaseLimitMarkup = decimal.NewFromInt(15) // phase E with a dominant E book
	phaseLimitMixed  = decimal.NewFromInt(10)

	// markupMajorityShare is the share of open positions that must sit in
	// phase E before the markup limit applies; below it E books fall back to
	// the late-phase limit.
	markupMajorityShare = decimal.NewFromFloat(0.60)

	volumeStrongScore     = decimal.NewFromInt(30)
	volumeModerateScore   = decimal.NewFromInt(20)
	volumeStrongDivisor   = decimal.NewFromFloat(0.70)
	volumeModerateDivisor = decimal.NewFromFloat(0.85)
	missingVolumeScore    = decimal.NewFromInt(15)

	clusterPairFactor   = decimal.NewFromFloat(0.90)
	clusterTripleFactor = decimal.NewFromFloat(0.85)
	clusterCrowdFactor  = decimal.NewFromFloat(0.80)

	capacityWarnRatio    = decimal.NewFromFloat(0.90)
	underutilizedHeatPct = decimal.NewFromInt(8)
	prematureHeatPct     = decimal.NewFromInt(6)
	mismatchHeatPct      = decimal.NewFromInt(8)
	mismatchScoreMax     = decimal.NewFromInt(20)
)

// Cluster is a group of open positions sharing a sector and Wyckoff phase.
// Groups of two or more have their summed risk discounted by Factor.
type Cluster struct {
	Sector          string          `json:"sector"`
	Phase           wyckoff.Phase   `json:"phase"`
	Count           int             `json:"count"`
	RiskPct         decimal.Decimal `json:"risk_pct"`
	AdjustedRiskPct decimal.Decimal `json:"adjusted_risk_pct"`
	Factor          decimal.Decimal `json:"factor"`
}

// HeatReport describes the open book's aggregate risk and the limit it is
// held to. AdjustedHeat is the authoritative value for capacity checks and
// never exceeds RawHeat.
type HeatReport struct {
	RawHeat             decimal.Decimal `json:"raw_heat"`
	AdjustedHeat        decimal.Decimal `json:"adjusted_heat"`
	MajorityPhase       wyckoff.Phase   `json:"majority_phase"`
	PhaseLimit          decimal.Decimal `json:"phase_limit"`
	AppliedLimit        decimal.Decimal `json:"applied_limit"`
	LimitBasis          string          `json:"limit_basis"`
	WeightedVolumeScore decimal.Decimal `json:"weighted_volume_score"`
	Clusters            []Cluster       `json:"clusters,omitempty"`
}

// CapacityAssessment is the outcome of checking a candidate position against
// the portfolio's heat capacity
type CapacityAssessment struct {
	Heat             *HeatReport     `json:"heat"`
	CandidateRiskPct decimal.Decimal `json:"candidate_risk_pct"`
	ProjectedHeat    decimal.Decimal `json:"projected_heat"`
	Exceeded         bool            `json:"exceeded"`
	Warnings         []Advisory      `json:"warnings,omitempty"`
}

// HeatCalculator aggregates open portfolio risk under phase-adaptive limits
// with volume relief and a correlation-cluster discount
type HeatCalculator struct {
	heatCap decimal.Decimal
}

// NewHeatCalculator creates a heat calculator whose applied limit is capped
// at the configured absolute ceiling
func NewHeatCalculator(limits Limits) *HeatCalculator {
	return &HeatCalculator{heatCap: limits.HeatCapPct}
}

// Assess measures the open book: raw heat, the majority-phase limit, volume
// relief from the risk-weighted confirmation score, and the cluster-adjusted
// heat used for all capacity comparisons
func (h *HeatCalculator) Assess(ctx *wyckoff.PortfolioContext) (*HeatReport, error) {
	if ctx == nil {
		return nil, NewConfigError("portfolio", "portfolio context is required")
	}

	open := ctx.Open()
	report := &HeatReport{MajorityPhase: wyckoff.PhaseUnknown}

	for _, p := range open {
		report.RawHeat = report.RawHeat.Add(p.RiskPct)
	}

	report.MajorityPhase = majorityPhase(open)
	report.PhaseLimit = h.phaseLimit(report.MajorityPhase, open)
	report.WeightedVolumeScore = weightedVolumeScore(open)
	report.Clusters, report.AdjustedHeat = clusterAdjust(open)

	h.applyLimit(report)
	return report, nil
}

// ValidateCapacity checks whether the candidate risk fits under the applied
// heat limit. The projection adds the candidate to the adjusted heat, and the
// advisory warnings are evaluated against that projection.
func (h *HeatCalculator) ValidateCapacity(ctx *wyckoff.PortfolioContext, candidateRiskPct decimal.Decimal) (*CapacityAssessment, error) {
	if candidateRiskPct.Sign() < 0 {
		return nil, ConfigErrorf("risk_pct", "candidate risk must not be negative, got: %s", candidateRiskPct)
	}

	report, err := h.Assess(ctx)
	if err != nil {
		return nil, err
	}

	assessment := &CapacityAssessment{
		Heat:             report,
		CandidateRiskPct: candidateRiskPct,
		ProjectedHeat:    report.AdjustedHeat.Add(candidateRiskPct),
	}
	assessment.Exceeded = assessment.ProjectedHeat.GreaterThan(report.AppliedLimit)
	if !assessment.Exceeded {
		assessment.Warnings = h.capacityWarnings(report, assessment.ProjectedHeat)
	}
	return assessment, nil
}

// majorityPhase returns the most common phase among open positions. Ties go
// to the phase encountered first in position order; an empty book is unknown.
func majorityPhase(open []wyckoff.Position) wyckoff.Phase {
	counts := make(map[wyckoff.Phase]int, len(open))
	var order []wyckoff.Phase
	for _, p := range open {
		if _, seen := counts[p.Phase]; !seen {
			order = append(order, p.Phase)
		}
		counts[p.Phase]++
	}

	majority := wyckoff.PhaseUnknown
	best := 0
	for _, phase := range order {
		if counts[phase] > best {
			majority = phase
			best = counts[phase]
		}
	}
	return majority
}

func (h *HeatCalculator) phaseLimit(majority wyckoff.Phase, open []wyckoff.Position) decimal.Decimal {
	switch majority {
	case wyckoff.PhaseA, wyckoff.PhaseB:
		return phaseLimitEarly
	case wyckoff.PhaseC, wyckoff.PhaseD:
		return phaseLimitLate
	case wyckoff.PhaseE:
		inMarkup := 0
		for _, p := range open {
			if p.Phase == wyckoff.PhaseE {
				inMarkup++
			}
		}
		share := decimal.NewFromInt(int64(inMarkup)).Div(decimal.NewFromInt(int64(len(open))))
		if share.GreaterThanOrEqual(markupMajorityShare) {
			return phaseLimitMarkup
		}
		return phaseLimitLate
	default:
		return phaseLimitMixed
	}
}

// weightedVolumeScore averages volume-confirmation scores weighted by each
// position's risk. A missing score counts as the conservative default of 15.
func weightedVolumeScore(open []wyckoff.Position) decimal.Decimal {
	var weighted, totalRisk decimal.Decimal
	for _, p := range open {
		score := missingVolumeScore
		if p.VolumeScore.Valid {
			score = p.VolumeScore.Decimal
		}
		weighted = weighted.Add(score.Mul(p.RiskPct))
		totalRisk = totalRisk.Add(p.RiskPct)
	}
	if totalRisk.Sign() <= 0 {
		return decimal.Zero
	}
	return weighted.Div(totalRisk)
}

// clusterAdjust groups open positions by (sector, phase) and discounts each
// group of two or more. Positions without a sector stay unclustered at full
// weight. Clusters are reported in first-seen order so repeated runs over the
// same book produce identical output.
func clusterAdjust(open []wyckoff.Position) ([]Cluster, decimal.Decimal) {
	type key struct {
		sector string
		phase  wyckoff.Phase
	}

	index := make(map[key]int, len(open))
	var groups []Cluster
	var unclustered decimal.Decimal

	for _, p := range open {
		if p.Sector == "" {
			unclustered = unclustered.Add(p.RiskPct)
			continue
		}
		k := key{sector: p.Sector, phase: p.Phase}
		i, seen := index[k]
		if !seen {
			index[k] = len(groups)
			groups = append(groups, Cluster{Sector: p.Sector, Phase: p.Phase})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].RiskPct = groups[i].RiskPct.Add(p.RiskPct)
	}

	adjusted := unclustered
	var clusters []Cluster
	for _, g := range groups {
		g.Factor = clusterFactor(g.Count)
		g.AdjustedRiskPct = g.RiskPct.Mul(g.Factor)
		adjusted = adjusted.Add(g.AdjustedRiskPct)
		if g.Count >= 2 {
			clusters = append(clusters, g)
		}
	}
	return clusters, adjusted
}

func clusterFactor(count int) decimal.Decimal {
	switch {
	case count >= 4:
		return clusterCrowdFactor
	case count == 3:
		return clusterTripleFactor
	case count == 2:
		return clusterPairFactor
	default:
		return decimal.NewFromInt(1)
	}
}

// applyLimit composes the phase limit with volume relief and caps the result
// at the absolute ceiling, recording which basis ends up binding
func (h *HeatCalculator) applyLimit(report *HeatReport) {
	basis := fmt.Sprintf("Phase %s limit", report.MajorityPhase)
	if !report.MajorityPhase.IsKnown() {
		basis = "mixed-phase limit"
	}

	applied := report.PhaseLimit
	switch {
	case report.WeightedVolumeScore.GreaterThanOrEqual(volumeStrongScore):
		applied = applied.Div(volumeStrongDivisor)
		basis = "volume-adjusted " + basis
	case report.WeightedVolumeScore.GreaterThanOrEqual(volumeModerateScore):
		applied = applied.Div(volumeModerateDivisor)
		basis = "volume-adjusted " + basis
	}

	if applied.GreaterThan(h.heatCap) {
		applied = h.heatCap
		basis = "absolute heat ceiling"
	}

	report.AppliedLimit = applied
	report.LimitBasis = fmt.Sprintf("%s of %s%%", basis, applied.StringFixed(1))
}

func (h *HeatCalculator) capacityWarnings(report *HeatReport, projected decimal.Decimal) []Advisory {
	var warnings []Advisory

	switch report.MajorityPhase {
	case wyckoff.PhaseD, wyckoff.PhaseE:
		if projected.LessThan(underutilizedHeatPct) {
			warnings = append(warnings, Advisory{
				Code: WarnUnderutilizedCapacity,
				Message: fmt.Sprintf("portfolio heat %s%% leaves Phase %s capacity unused",
					projected.StringFixed(2), report.MajorityPhase),
			})
		}
	case wyckoff.PhaseA, wyckoff.PhaseB:
		if projected.GreaterThan(prematureHeatPct) {
			warnings = append(warnings, Advisory{
				Code: WarnPrematureCommitment,
				Message: fmt.Sprintf("portfolio heat %s%% is aggressive for a Phase %s book",
					projected.StringFixed(2), report.MajorityPhase),
			})
		}
	}

	if projected.GreaterThanOrEqual(report.AppliedLimit.Mul(capacityWarnRatio)) {
		warnings = append(warnings, Advisory{
			Code: WarnCapacityLimit,
			Message: fmt.Sprintf("portfolio heat %s%% is within 10%% of the %s",
				projected.StringFixed(2), report.LimitBasis),
		})
	}

	if projected.GreaterThan(mismatchHeatPct) && report.WeightedVolumeScore.LessThan(mismatchScoreMax) {
		warnings = append(warnings, Advisory{
			Code: WarnVolumeQualityMismatch,
			Message: fmt.Sprintf("portfolio heat %s%% carried on weak volume confirmation (score %s)",
				projected.StringFixed(2), report.WeightedVolumeScore.StringFixed(1)),
		})
	}

	return warnings
}
