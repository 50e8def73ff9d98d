package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// Stop anchoring factors per pattern. Stops hang off structural levels, never
// off a naive percentage of entry.
var (
	springStopFactor = decimal.NewFromFloat(0.98)
	stStopFactor     = decimal.NewFromFloat(0.97)
	sosIceFactor     = decimal.NewFromFloat(0.95)
	sosCreekFactor   = decimal.NewFromFloat(0.97)
	lpsStopFactor    = decimal.NewFromFloat(0.97)
	utadStopFactor   = decimal.NewFromFloat(1.02)

	// sosNarrowRangeMax is the creek-to-ice spread up to which the fixed
	// below-ice stop applies; wider ranges switch to the creek anchor so the
	// stop can stay inside the 10% maximum buffer.
	sosNarrowRangeMax = decimal.NewFromFloat(0.15)

	minBufferPct = decimal.NewFromInt(1)
	maxBufferPct = decimal.NewFromInt(10)
)

// StructuralStop is a stop-loss derived from pattern structure. BufferPct is
// the stop's distance from entry in percent of entry.
type StructuralStop struct {
	Price     decimal.Decimal `json:"price"`
	BufferPct decimal.Decimal `json:"buffer_pct"`
	// Reference names the structural level the stop anchors to
	Reference string `json:"reference"`
	// Invalidation explains why the stop is unusable; set only when Valid is false
	Invalidation string `json:"invalidation,omitempty"`
	// Adjustment explains a widening applied to meet the minimum buffer
	Adjustment string `json:"adjustment,omitempty"`
	Valid      bool   `json:"valid"`
}

// StopCalculator derives structural stop-losses from pattern levels
type StopCalculator struct{}

// NewStopCalculator creates a stop calculator
func NewStopCalculator() *StopCalculator {
	return &StopCalculator{}
}

// Calculate returns the structural stop for the signal. Missing or malformed
// levels are a ConfigError; a buffer outside [1%, 10%] is reported on the
// returned stop, not as an error. The calculation is pure: the same signal
// always yields an identical stop.
func (c *StopCalculator) Calculate(signal wyckoff.TradeSignal) (*StructuralStop, error) {
	if signal.Inputs == nil {
		return nil, NewConfigError("inputs", "pattern inputs are required")
	}
	if err := signal.Inputs.Validate(); err != nil {
		return nil, WrapConfigError(err, "inputs", fmt.Sprintf("incomplete %s structure", signal.Pattern()))
	}
	if signal.Entry.Sign() <= 0 {
		return nil, ConfigErrorf("entry", "entry must be positive, got: %s", signal.Entry)
	}

	stop := &StructuralStop{Valid: true}
	switch in := signal.Inputs.(type) {
	case wyckoff.SpringInputs:
		stop.Price = in.SpringLow.Mul(springStopFactor)
		stop.Reference = fmt.Sprintf("spring low %s", in.SpringLow)

	case wyckoff.StInputs:
		anchor := in.Ice
		stop.Reference = fmt.Sprintf("ice %s", in.Ice)
		if in.SpringLow.Valid && in.SpringLow.Decimal.LessThan(anchor) {
			anchor = in.SpringLow.Decimal
			stop.Reference = fmt.Sprintf("spring low %s", anchor)
		}
		stop.Price = anchor.Mul(stStopFactor)

	case wyckoff.SosInputs:
		spread := in.Creek.Sub(in.Ice).Div(in.Ice)
		if spread.LessThanOrEqual(sosNarrowRangeMax) {
			stop.Price = in.Ice.Mul(sosIceFactor)
			stop.Reference = fmt.Sprintf("ice %s", in.Ice)
		} else {
			stop.Price = in.Creek.Mul(sosCreekFactor)
			stop.Reference = fmt.Sprintf("creek %s, wide creek-to-ice range", in.Creek)
		}

	case wyckoff.LpsInputs:
		stop.Price = in.Ice.Mul(lpsStopFactor)
		stop.Reference = fmt.Sprintf("ice %s", in.Ice)

	case wyckoff.UtadInputs:
		stop.Price = in.UtadHigh.Mul(utadStopFactor)
		stop.Reference = fmt.Sprintf("utad high %s", in.UtadHigh)

	default:
		return nil, ConfigErrorf("inputs", "unsupported pattern inputs %T", signal.Inputs)
	}

	c.validateBuffer(signal, stop)
	return stop, nil
}

// validateBuffer enforces the [1%, 10%] buffer band. A too-tight stop is
// widened to exactly 1% on the pattern's stop side of entry; a too-wide stop
// invalidates the setup with the computed values left untouched.
func (c *StopCalculator) validateBuffer(signal wyckoff.TradeSignal, stop *StructuralStop) {
	entry := signal.Entry
	buffer := stop.Price.Sub(entry).Abs().Div(entry).Mul(hundred)
	stop.BufferPct = roundPct(buffer)

	switch {
	case buffer.LessThan(minBufferPct):
		widened := entry.Mul(decimal.NewFromFloat(0.99))
		if signal.Direction() == wyckoff.DirectionShort {
			widened = entry.Mul(decimal.NewFromFloat(1.01))
		}
		stop.Adjustment = fmt.Sprintf(
			"buffer %s%% below the 1%% minimum, stop widened from %s to %s",
			stop.BufferPct, stop.Price, widened,
		)
		stop.Price = widened
		stop.BufferPct = minBufferPct

	case buffer.GreaterThan(maxBufferPct):
		stop.Valid = false
		stop.Invalidation = fmt.Sprintf(
			"buffer %s%% exceeds the 10%% maximum, structural stop %s is too far from entry %s",
			stop.BufferPct, stop.Price, entry,
		)
	}
}
