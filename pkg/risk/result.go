package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// StageStatus is the outcome of one pipeline stage
type StageStatus string

const (
	StatusPass StageStatus = "PASS"
	StatusWarn StageStatus = "WARN"
	StatusFail StageStatus = "FAIL"
)

// Pipeline stage names, in execution order
const (
	StageInputValidation    = "input_validation"
	StagePhasePrerequisites = "phase_prerequisites"
	StageStructuralStop     = "structural_stop"
	StageRMultiple          = "r_multiple"
	StageTradeRisk          = "trade_risk"
	StagePortfolioHeat      = "portfolio_heat"
	StageCampaignRisk       = "campaign_risk"
	StageCorrelatedRisk     = "correlated_risk"
	StagePositionSizing     = "position_sizing"
)

// StageResult records the outcome of one stage with the values it compared
type StageResult struct {
	Name    string            `json:"name"`
	Status  StageStatus       `json:"status"`
	Message string            `json:"message,omitempty"`
	Metrics map[string]string `json:"metrics,omitempty"`
}

// Advisory is a non-blocking warning attached to an admitted (or, for
// context, a rejected) validation
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Advisory codes
const (
	WarnStopWidened            = "stop_widened"
	WarnUnderutilizedCapacity  = "underutilized_opportunity"
	WarnPrematureCommitment    = "premature_commitment"
	WarnCapacityLimit          = "capacity_limit"
	WarnVolumeQualityMismatch  = "volume_quality_mismatch"
	WarnCorrelationProximity   = "correlation_proximity"
	WarnCorrelationBreach      = "correlation_breach"
	WarnOverrideApplied        = "override_applied"
)

// PositionSizing is the engine's decision for one trade signal: admitted
// with a sized position, or rejected with the failing stage on record.
type PositionSizing struct {
	SignalID string              `json:"signal_id,omitempty"`
	Symbol   string              `json:"symbol"`
	Pattern  wyckoff.PatternType `json:"pattern"`

	Approved     bool   `json:"approved"`
	RejectStage  string `json:"reject_stage,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`

	RequestedRiskPct decimal.Decimal `json:"requested_risk_pct"`
	RiskPct          decimal.Decimal `json:"risk_pct"`
	RiskAmount       decimal.Decimal `json:"risk_amount"`
	Quantity         decimal.Decimal `json:"quantity"`
	RMultiple        decimal.Decimal `json:"r_multiple"`
	Stop             *StructuralStop `json:"stop,omitempty"`

	CampaignRiskBefore decimal.Decimal `json:"campaign_risk_before"`
	CampaignRiskAfter  decimal.Decimal `json:"campaign_risk_after"`
	HeatBefore         decimal.Decimal `json:"heat_before"`
	HeatAfter          decimal.Decimal `json:"heat_after"`
	HeatLimit          decimal.Decimal `json:"heat_limit"`
	CorrelatedRisk     []Exposure      `json:"correlated_risk,omitempty"`

	Stages   []StageResult `json:"stages"`
	Warnings []Advisory    `json:"warnings,omitempty"`

	Overridden bool   `json:"overridden,omitempty"`
	OverrideID string `json:"override_id,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// FailedStage returns the first failing stage, or nil when every executed
// stage passed.
func (s *PositionSizing) FailedStage() *StageResult {
	for i := range s.Stages {
		if s.Stages[i].Status == StatusFail {
			return &s.Stages[i]
		}
	}
	return nil
}

// StageByName returns the named stage result, or nil when the pipeline
// short-circuited before reaching it.
func (s *PositionSizing) StageByName(name string) *StageResult {
	for i := range s.Stages {
		if s.Stages[i].Name == name {
			return &s.Stages[i]
		}
	}
	return nil
}

func (s *PositionSizing) appendStage(sr StageResult) {
	s.Stages = append(s.Stages, sr)
}

func (s *PositionSizing) addWarning(a Advisory) {
	s.Warnings = append(s.Warnings, a)
}

func passStage(name, message string, metrics map[string]string) StageResult {
	return StageResult{Name: name, Status: StatusPass, Message: message, Metrics: metrics}
}

func warnStage(name, message string, metrics map[string]string) StageResult {
	return StageResult{Name: name, Status: StatusWarn, Message: message, Metrics: metrics}
}

func failStage(name, message string, metrics map[string]string) StageResult {
	return StageResult{Name: name, Status: StatusFail, Message: message, Metrics: metrics}
}

var hundred = decimal.NewFromInt(100)

// roundPct rounds a percentage to the 4 decimal places audit numbers carry.
// decimal.Round rounds half away from zero, which is round-half-up for the
// non-negative values flowing through the engine.
func roundPct(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}
