// Package risk implements multi-stage trade validation and position sizing
// for Wyckoff accumulation and distribution campaigns. A validation run is a
// pure function of a trade signal and a portfolio snapshot: nine ordered,
// short-circuiting stages derive a structural stop, gate the reward:risk
// ratio, check per-trade, portfolio-heat, campaign, and correlation capacity,
// and convert the admitted risk into a whole-unit position size.
package risk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// PhaseValidator is the phase-classification collaborator consulted before
// the risk stages run. A non-nil error rejects the trade at the
// phase_prerequisites stage.
type PhaseValidator interface {
	ValidatePhase(signal wyckoff.TradeSignal, ctx *wyckoff.PortfolioContext) error
}

// NoopPhaseValidator admits every signal. Phase classification lives in a
// separate collaborator; until one is wired in, the stage is a pass-through.
type NoopPhaseValidator struct{}

// ValidatePhase implements PhaseValidator
func (NoopPhaseValidator) ValidatePhase(wyckoff.TradeSignal, *wyckoff.PortfolioContext) error {
	return nil
}

// ValidationRequest asks the engine to validate and size one trade signal
type ValidationRequest struct {
	// SignalID correlates the decision with audit records
	SignalID string              `json:"signal_id,omitempty"`
	Signal   wyckoff.TradeSignal `json:"signal"`
	// RiskPct is the requested risk in percent of equity; zero applies the
	// engine's default risk
	RiskPct decimal.Decimal `json:"risk_pct"`
	// EvaluatedAt stamps audit metadata only; risk arithmetic never reads it
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// EngineConfig configures a validation engine. The zero value yields default
// limits, a pass-through phase validator, and a disabled logger.
type EngineConfig struct {
	Limits         *Limits
	PhaseValidator PhaseValidator
	Logger         zerolog.Logger
}

// Engine runs the validation pipeline. A single call is a pure, synchronous
// computation over the given snapshot, so one engine may be shared across
// goroutines validating different symbols concurrently.
type Engine struct {
	limits      Limits
	stops       *StopCalculator
	heat        *HeatCalculator
	campaigns   *CampaignTracker
	correlation *CorrelationValidator
	sizer       *PositionSizer
	phases      PhaseValidator
	log         zerolog.Logger
}

// NewEngine creates a validation engine from the config
func NewEngine(cfg EngineConfig) (*Engine, error) {
	limits := DefaultLimits()
	if cfg.Limits != nil {
		limits = cfg.Limits.WithDefaults()
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	phases := cfg.PhaseValidator
	if phases == nil {
		phases = NoopPhaseValidator{}
	}

	return &Engine{
		limits:      limits,
		stops:       NewStopCalculator(),
		heat:        NewHeatCalculator(limits),
		campaigns:   NewCampaignTracker(limits),
		correlation: NewCorrelationValidator(),
		sizer:       NewPositionSizer(limits),
		phases:      phases,
		log:         cfg.Logger,
	}, nil
}

// Limits returns the engine's effective risk limits
func (e *Engine) Limits() Limits {
	return e.limits
}

// Validate runs the full pipeline for one signal against the snapshot.
// Policy rejections come back as a PositionSizing with Approved false and
// the stages executed so far; only malformed input or configuration returns
// an error. Identical inputs always produce identical results.
func (e *Engine) Validate(req ValidationRequest, ctx *wyckoff.PortfolioContext) (*PositionSizing, error) {
	return e.run(req, ctx, "")
}

// ValidateBatch validates signals in order against one shared snapshot.
// Rejections do not stop the batch; the first ConfigError aborts it and
// returns the results completed so far.
func (e *Engine) ValidateBatch(reqs []ValidationRequest, ctx *wyckoff.PortfolioContext) ([]*PositionSizing, error) {
	results := make([]*PositionSizing, 0, len(reqs))
	for _, req := range reqs {
		result, err := e.run(req, ctx, "")
		if err != nil {
			return results, fmt.Errorf("signal %s: %w", req.SignalID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) run(req ValidationRequest, ctx *wyckoff.PortfolioContext, mode wyckoff.EnforcementMode) (*PositionSizing, error) {
	signal := req.Signal
	result := &PositionSizing{
		SignalID:    req.SignalID,
		Symbol:      signal.Symbol,
		Pattern:     signal.Pattern(),
		EvaluatedAt: req.EvaluatedAt,
	}

	// 1. input_validation: failures here are fatal data errors, not
	// rejections, so no partial result is produced.
	if ctx == nil {
		return nil, NewConfigError("portfolio", "portfolio context is required")
	}
	if err := ctx.Validate(); err != nil {
		return nil, WrapConfigError(err, "portfolio", "invalid portfolio snapshot")
	}
	if err := signal.Validate(); err != nil {
		return nil, WrapConfigError(err, "signal", "invalid trade signal")
	}
	riskPct := req.RiskPct
	if riskPct.IsZero() {
		riskPct = e.limits.DefaultRiskPct
	}
	if riskPct.Sign() < 0 {
		return nil, ConfigErrorf("risk_pct", "requested risk must not be negative, got: %s", riskPct)
	}
	result.RequestedRiskPct = riskPct
	result.appendStage(passStage(StageInputValidation, "signal and portfolio snapshot are well-formed", map[string]string{
		"symbol":  signal.Symbol,
		"pattern": string(signal.Pattern()),
		"equity":  ctx.AccountEquity.String(),
	}))

	// 2. phase_prerequisites
	if err := e.phases.ValidatePhase(signal, ctx); err != nil {
		return e.reject(result, StagePhasePrerequisites, err.Error(), nil), nil
	}
	result.appendStage(passStage(StagePhasePrerequisites, "phase prerequisites satisfied", nil))

	// 3. structural_stop
	stop, err := e.stops.Calculate(signal)
	if err != nil {
		return nil, err
	}
	result.Stop = stop
	stopMetrics := map[string]string{
		"stop":       stop.Price.String(),
		"buffer_pct": stop.BufferPct.String(),
		"reference":  stop.Reference,
	}
	if !stop.Valid {
		return e.reject(result, StageStructuralStop, stop.Invalidation, stopMetrics), nil
	}
	if stop.Adjustment != "" {
		result.addWarning(Advisory{Code: WarnStopWidened, Message: stop.Adjustment})
		result.appendStage(warnStage(StageStructuralStop, stop.Adjustment, stopMetrics))
	} else {
		result.appendStage(passStage(StageStructuralStop,
			fmt.Sprintf("stop %s anchored to %s", stop.Price, stop.Reference), stopMetrics))
	}

	// 4. r_multiple
	rr, err := ComputeRewardRisk(signal, stop, ctx.RMultiples)
	if err != nil {
		return nil, err
	}
	result.RMultiple = rr.RMultiple
	rrMetrics := map[string]string{
		"r_multiple": rr.RMultiple.StringFixed(2),
		"floor":      rr.Floor.String(),
	}
	if !rr.MeetsFloor {
		return e.reject(result, StageRMultiple,
			fmt.Sprintf("R-multiple %s is below the %s minimum of %s",
				rr.RMultiple.StringFixed(2), signal.Pattern(), rr.Floor), rrMetrics), nil
	}
	result.appendStage(passStage(StageRMultiple,
		fmt.Sprintf("R-multiple %s clears the %s floor of %s",
			rr.RMultiple.StringFixed(2), signal.Pattern(), rr.Floor), rrMetrics))

	// 5. trade_risk
	tradeMetrics := map[string]string{
		"requested_pct": riskPct.String(),
		"ceiling_pct":   e.limits.PerTradeMaxPct.String(),
	}
	if riskPct.GreaterThan(e.limits.PerTradeMaxPct) {
		return e.reject(result, StageTradeRisk,
			fmt.Sprintf("requested risk %s%% exceeds the per-trade maximum of %s%%",
				riskPct.StringFixed(2), e.limits.PerTradeMaxPct.StringFixed(2)), tradeMetrics), nil
	}
	result.appendStage(passStage(StageTradeRisk,
		fmt.Sprintf("requested risk %s%% within the per-trade maximum of %s%%",
			riskPct.StringFixed(2), e.limits.PerTradeMaxPct.StringFixed(2)), tradeMetrics))

	// 6. portfolio_heat
	capacity, err := e.heat.ValidateCapacity(ctx, riskPct)
	if err != nil {
		return nil, err
	}
	result.HeatBefore = roundPct(capacity.Heat.AdjustedHeat)
	result.HeatAfter = roundPct(capacity.ProjectedHeat)
	result.HeatLimit = roundPct(capacity.Heat.AppliedLimit)
	heatMetrics := map[string]string{
		"raw_heat":       capacity.Heat.RawHeat.StringFixed(2),
		"adjusted_heat":  capacity.Heat.AdjustedHeat.StringFixed(2),
		"projected_heat": capacity.ProjectedHeat.StringFixed(2),
		"applied_limit":  capacity.Heat.AppliedLimit.StringFixed(2),
		"limit_basis":    capacity.Heat.LimitBasis,
		"majority_phase": string(capacity.Heat.MajorityPhase),
	}
	if capacity.Exceeded {
		return e.reject(result, StagePortfolioHeat,
			fmt.Sprintf("projected portfolio heat %s%% exceeds %s",
				capacity.ProjectedHeat.StringFixed(2), capacity.Heat.LimitBasis), heatMetrics), nil
	}
	for _, w := range capacity.Warnings {
		result.addWarning(w)
	}
	if len(capacity.Warnings) > 0 {
		result.appendStage(warnStage(StagePortfolioHeat, capacity.Warnings[0].Message, heatMetrics))
	} else {
		result.appendStage(passStage(StagePortfolioHeat,
			fmt.Sprintf("projected portfolio heat %s%% within %s",
				capacity.ProjectedHeat.StringFixed(2), capacity.Heat.LimitBasis), heatMetrics))
	}

	// 7. campaign_risk
	if signal.CampaignID == "" {
		result.appendStage(passStage(StageCampaignRisk, "signal is not part of a campaign", nil))
	} else {
		camp, err := e.campaigns.Assess(signal, ctx, riskPct)
		if err != nil {
			return nil, err
		}
		result.CampaignRiskBefore = roundPct(camp.ExistingRiskPct)
		result.CampaignRiskAfter = roundPct(camp.ProjectedRiskPct)
		campMetrics := map[string]string{
			"campaign_id":   camp.CampaignID,
			"existing_pct":  camp.ExistingRiskPct.StringFixed(2),
			"projected_pct": camp.ProjectedRiskPct.StringFixed(2),
			"limit_pct":     camp.LimitPct.StringFixed(2),
			"entry_count":   fmt.Sprintf("%d", camp.EntryCount),
		}
		if camp.Exceeded {
			return e.reject(result, StageCampaignRisk,
				fmt.Sprintf("Campaign risk %s%% exceeds %s%% limit (campaign %s: existing %s%% + new %s%%)",
					camp.ProjectedRiskPct.StringFixed(2), camp.LimitPct.StringFixed(2),
					camp.CampaignID, camp.ExistingRiskPct.StringFixed(2), riskPct.StringFixed(2)), campMetrics), nil
		}
		if camp.SectorExceeded {
			return e.reject(result, StageCampaignRisk,
				fmt.Sprintf("Campaign limit: sector %s already runs %d active campaigns, maximum is %d",
					camp.Sector, camp.SectorCampaigns, camp.SectorLimit), campMetrics), nil
		}
		result.appendStage(passStage(StageCampaignRisk,
			fmt.Sprintf("campaign %s risk %s%% within %s%% limit",
				camp.CampaignID, camp.ProjectedRiskPct.StringFixed(2), camp.LimitPct.StringFixed(2)), campMetrics))
	}

	// 8. correlated_risk
	corr, err := e.correlation.Assess(signal, ctx, riskPct, mode)
	if err != nil {
		return nil, err
	}
	result.CorrelatedRisk = corr.Exposures
	corrMetrics := make(map[string]string, 2*len(corr.Exposures)+1)
	corrMetrics["mode"] = string(corr.Mode)
	for _, exp := range corr.Exposures {
		corrMetrics[exp.Dimension+"_projected"] = exp.ProjectedPct.StringFixed(2)
		corrMetrics[exp.Dimension+"_limit"] = exp.LimitPct.StringFixed(2)
	}
	if corr.Failed != nil {
		return e.reject(result, StageCorrelatedRisk, breachMessage(*corr.Failed), corrMetrics), nil
	}
	for _, w := range corr.Warnings {
		result.addWarning(w)
	}
	if len(corr.Warnings) > 0 {
		result.appendStage(warnStage(StageCorrelatedRisk, corr.Warnings[0].Message, corrMetrics))
	} else {
		result.appendStage(passStage(StageCorrelatedRisk, "correlated exposure within limits", corrMetrics))
	}

	// 9. position_sizing
	size, err := e.sizer.Size(ctx.AccountEquity, signal.Entry, stop.Price, riskPct)
	if err != nil {
		return nil, err
	}
	result.RiskPct = size.RiskPct
	result.RiskAmount = size.RiskAmount
	result.Quantity = size.Quantity
	sizeMetrics := map[string]string{
		"risk_budget": size.RiskBudget.StringFixed(2),
		"unit_risk":   size.UnitRisk.String(),
		"quantity":    size.Quantity.String(),
	}
	if size.Quantity.Sign() <= 0 {
		return e.reject(result, StagePositionSizing,
			fmt.Sprintf("risk budget %s cannot fill a single unit at %s risk per unit",
				size.RiskBudget.StringFixed(2), size.UnitRisk), sizeMetrics), nil
	}
	result.appendStage(passStage(StagePositionSizing,
		fmt.Sprintf("quantity %s sized at %s risk per unit", size.Quantity, size.UnitRisk), sizeMetrics))

	result.Approved = true
	e.log.Info().
		Str("symbol", result.Symbol).
		Str("pattern", string(result.Pattern)).
		Str("quantity", size.Quantity.String()).
		Str("risk_pct", size.RiskPct.String()).
		Msg("trade admitted")
	return result, nil
}

func (e *Engine) reject(result *PositionSizing, stage, reason string, metrics map[string]string) *PositionSizing {
	result.appendStage(failStage(stage, reason, metrics))
	result.Approved = false
	result.RejectStage = stage
	result.RejectReason = reason
	e.log.Warn().
		Str("symbol", result.Symbol).
		Str("pattern", string(result.Pattern)).
		Str("stage", stage).
		Str("reason", reason).
		Msg("trade rejected")
	return result
}
