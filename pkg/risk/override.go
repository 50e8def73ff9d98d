package risk

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/wyckoffd/risk-engine/pkg/audit"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

var (
	// ErrNotOverridable means the rejection was not a strict-mode
	// correlation breach; only those may be bypassed
	ErrNotOverridable = errors.New("rejection is not overridable")
	// ErrAuditUnavailable means the override's audit entry could not be
	// recorded; an unaudited override always fails closed
	ErrAuditUnavailable = errors.New("audit trail unavailable")
)

// OverrideRequest asks to bypass a strict-mode correlation rejection
type OverrideRequest struct {
	Request       ValidationRequest `json:"request"`
	Approver      string            `json:"approver"`
	Justification string            `json:"justification"`
}

// OverrideService grants audited manual overrides of strict correlation
// rejections. The audit write runs through a circuit breaker so a dead
// audit sink rejects overrides quickly instead of hanging every request.
type OverrideService struct {
	engine   *Engine
	recorder audit.Recorder
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger
}

// NewOverrideService creates an override service writing to the given
// audit recorder
func NewOverrideService(engine *Engine, recorder audit.Recorder, log zerolog.Logger) *OverrideService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "audit-recorder",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &OverrideService{
		engine:   engine,
		recorder: recorder,
		breaker:  breaker,
		log:      log,
	}
}

// Override re-validates the signal and, when it is rejected by the
// correlated-risk stage in strict mode, records an audit entry and re-runs
// the pipeline in permissive mode. The audit write must succeed before the
// override takes effect. An approved result passes through untouched, and
// any other rejection returns ErrNotOverridable.
func (s *OverrideService) Override(req OverrideRequest, ctx *wyckoff.PortfolioContext) (*PositionSizing, error) {
	if req.Request.SignalID == "" {
		return nil, NewConfigError("signal_id", "signal id is required for an override")
	}
	if req.Approver == "" {
		return nil, NewConfigError("approver", "approver identity is required for an override")
	}
	if req.Justification == "" {
		return nil, NewConfigError("justification", "justification is required for an override")
	}

	result, err := s.engine.run(req.Request, ctx, "")
	if err != nil {
		return nil, err
	}
	if result.Approved {
		return result, nil
	}
	if result.RejectStage != StageCorrelatedRisk {
		return nil, fmt.Errorf("stage %s: %w", result.RejectStage, ErrNotOverridable)
	}

	entry := audit.Entry{
		ID:            audit.NewEntryID(),
		Kind:          audit.KindOverride,
		SignalID:      req.Request.SignalID,
		Symbol:        result.Symbol,
		Pattern:       result.Pattern,
		Stage:         result.RejectStage,
		Reason:        result.RejectReason,
		Approver:      req.Approver,
		Justification: req.Justification,
		RecordedAt:    req.Request.EvaluatedAt,
	}
	if _, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.recorder.Record(entry)
	}); err != nil {
		s.log.Error().
			Err(err).
			Str("signal_id", req.Request.SignalID).
			Str("approver", req.Approver).
			Msg("override denied, audit write failed")
		return nil, fmt.Errorf("%w: %v", ErrAuditUnavailable, err)
	}

	overridden, err := s.engine.run(req.Request, ctx, wyckoff.EnforcementPermissive)
	if err != nil {
		return nil, err
	}
	overridden.Overridden = true
	overridden.OverrideID = entry.ID
	overridden.addWarning(Advisory{
		Code: WarnOverrideApplied,
		Message: fmt.Sprintf("strict correlation rejection overridden by %s (audit entry %s)",
			req.Approver, entry.ID),
	})

	s.log.Info().
		Str("signal_id", req.Request.SignalID).
		Str("symbol", overridden.Symbol).
		Str("approver", req.Approver).
		Str("audit_id", entry.ID).
		Msg("strict correlation rejection overridden")
	return overridden, nil
}
