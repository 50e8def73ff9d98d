package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyckoffd/risk-engine/pkg/audit"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

type failingRecorder struct {
	calls int
}

func (r *failingRecorder) Record(audit.Entry) error {
	r.calls++
	return errors.New("audit sink unreachable")
}

func overrideContext() *wyckoff.PortfolioContext {
	ctx := pipelineContext()
	ctx.SectorMap["ETHUSDT"] = wyckoff.SectorInfo{Sector: "layer1", AssetClass: "crypto", Geography: "global"}
	ctx.ActiveCampaigns = []wyckoff.Campaign{
		{ID: "ETH-ACC-1", Symbol: "ETHUSDT", TotalRiskPct: decimal.NewFromFloat(5.5), EntryCount: 2},
	}
	return ctx
}

func overrideRequest() OverrideRequest {
	signal := springSignal(102, 100)
	signal.Target = decimal.NewFromInt(114)
	return OverrideRequest{
		Request: ValidationRequest{
			SignalID:    "sig-1",
			Signal:      signal,
			RiskPct:     decimal.NewFromInt(1),
			EvaluatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Approver:      "risk-desk",
		Justification: "campaign thesis confirmed on the weekly, accepting sector concentration",
	}
}

// TestOverrideGrantsAuditedBypass verifies a strict correlation rejection is
// re-admitted in permissive mode once the audit entry is written
func TestOverrideGrantsAuditedBypass(t *testing.T) {
	engine := newTestEngine(t)
	recorder := audit.NewMemoryRecorder()
	service := NewOverrideService(engine, recorder, zerolog.Logger{})

	req := overrideRequest()
	ctx := overrideContext()

	// confirm the baseline rejection first
	baseline, err := engine.Validate(req.Request, ctx)
	require.NoError(t, err)
	require.Equal(t, StageCorrelatedRisk, baseline.RejectStage)

	result, err := service.Override(req, ctx)
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.True(t, result.Overridden)
	assert.NotEmpty(t, result.OverrideID)
	assert.Contains(t, warningCodes(result.Warnings), WarnOverrideApplied)
	assert.Contains(t, warningCodes(result.Warnings), WarnCorrelationBreach)

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, audit.KindOverride, entry.Kind)
	assert.Equal(t, result.OverrideID, entry.ID)
	assert.Equal(t, "sig-1", entry.SignalID)
	assert.Equal(t, StageCorrelatedRisk, entry.Stage)
	assert.Equal(t, "risk-desk", entry.Approver)
	assert.Equal(t, req.Request.EvaluatedAt, entry.RecordedAt)
}

// TestOverrideFailsClosed verifies a failed audit write denies the override
func TestOverrideFailsClosed(t *testing.T) {
	engine := newTestEngine(t)
	recorder := &failingRecorder{}
	service := NewOverrideService(engine, recorder, zerolog.Logger{})

	result, err := service.Override(overrideRequest(), overrideContext())

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrAuditUnavailable), "got: %v", err)
	assert.Equal(t, 1, recorder.calls)
}

// TestOverrideBreakerOpensAfterConsecutiveFailures verifies the audit
// breaker stops hitting a dead sink after three straight failures
func TestOverrideBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	engine := newTestEngine(t)
	recorder := &failingRecorder{}
	service := NewOverrideService(engine, recorder, zerolog.Logger{})

	req := overrideRequest()
	ctx := overrideContext()
	for i := 0; i < 4; i++ {
		_, err := service.Override(req, ctx)
		assert.True(t, errors.Is(err, ErrAuditUnavailable))
	}

	assert.Equal(t, 3, recorder.calls, "the open breaker must short-circuit the fourth write")
}

// TestOverrideOnlyCorrelationRejections verifies other rejection stages are
// not overridable
func TestOverrideOnlyCorrelationRejections(t *testing.T) {
	engine := newTestEngine(t)
	recorder := audit.NewMemoryRecorder()
	service := NewOverrideService(engine, recorder, zerolog.Logger{})

	req := overrideRequest()
	req.Request.Signal.Target = decimal.NewFromInt(110)

	result, err := service.Override(req, pipelineContext())

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNotOverridable), "got: %v", err)
	assert.Contains(t, err.Error(), StageRMultiple)
	assert.Equal(t, 0, recorder.Len(), "no audit entry for a denied override")
}

// TestOverridePassthroughWhenApproved verifies an override request on a
// signal that validates cleanly returns the plain result untouched
func TestOverridePassthroughWhenApproved(t *testing.T) {
	engine := newTestEngine(t)
	recorder := audit.NewMemoryRecorder()
	service := NewOverrideService(engine, recorder, zerolog.Logger{})

	result, err := service.Override(overrideRequest(), pipelineContext())
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.False(t, result.Overridden)
	assert.Empty(t, result.OverrideID)
	assert.Equal(t, 0, recorder.Len())
}

// TestOverrideRequiredFields verifies signal id, approver, and justification
// are all mandatory
func TestOverrideRequiredFields(t *testing.T) {
	engine := newTestEngine(t)
	service := NewOverrideService(engine, audit.NewMemoryRecorder(), zerolog.Logger{})
	ctx := overrideContext()

	req := overrideRequest()
	req.Request.SignalID = ""
	_, err := service.Override(req, ctx)
	assert.True(t, IsConfigError(err))

	req = overrideRequest()
	req.Approver = ""
	_, err = service.Override(req, ctx)
	assert.True(t, IsConfigError(err))

	req = overrideRequest()
	req.Justification = ""
	_, err = service.Override(req, ctx)
	assert.True(t, IsConfigError(err))
}
