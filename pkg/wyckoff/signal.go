package wyckoff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSignal is one candidate trade produced by upstream pattern detection.
// It is immutable input: the engine reads it and never writes it back.
type TradeSignal struct {
	Symbol string        `json:"symbol"`
	Inputs PatternInputs `json:"inputs"`

	Entry  decimal.Decimal `json:"entry"`
	Target decimal.Decimal `json:"target"`

	// ProposedStop is the detector's advisory stop. The engine always derives
	// its own structural stop; the proposal never feeds the pipeline.
	ProposedStop decimal.NullDecimal `json:"proposed_stop"`

	CampaignID  string    `json:"campaign_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Pattern returns the pattern type of the signal's inputs, or an empty
// pattern when no inputs are attached.
func (s TradeSignal) Pattern() PatternType {
	if s.Inputs == nil {
		return ""
	}
	return s.Inputs.Pattern()
}

// Direction returns the trade direction implied by the signal's pattern
func (s TradeSignal) Direction() TradeDirection {
	return s.Pattern().Direction()
}

// Validate checks that the signal is structurally complete: inputs present
// and valid, prices positive, and entry/target/proposed-stop ordered for the
// pattern's direction.
func (s TradeSignal) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if s.Inputs == nil {
		return fmt.Errorf("pattern inputs are required")
	}
	if !s.Pattern().IsValid() {
		return fmt.Errorf("unknown pattern type: %s", s.Pattern())
	}
	if err := s.Inputs.Validate(); err != nil {
		return fmt.Errorf("%s inputs: %w", s.Pattern(), err)
	}
	if err := requirePositive("entry", s.Entry); err != nil {
		return err
	}
	if err := requirePositive("target", s.Target); err != nil {
		return err
	}

	switch s.Direction() {
	case DirectionShort:
		if s.Target.GreaterThanOrEqual(s.Entry) {
			return fmt.Errorf("short target %s must be below entry %s", s.Target, s.Entry)
		}
		if s.ProposedStop.Valid && s.ProposedStop.Decimal.LessThanOrEqual(s.Entry) {
			return fmt.Errorf("short proposed stop %s must be above entry %s", s.ProposedStop.Decimal, s.Entry)
		}
	default:
		if s.Target.LessThanOrEqual(s.Entry) {
			return fmt.Errorf("long target %s must be above entry %s", s.Target, s.Entry)
		}
		if s.ProposedStop.Valid && s.ProposedStop.Decimal.GreaterThanOrEqual(s.Entry) {
			return fmt.Errorf("long proposed stop %s must be below entry %s", s.ProposedStop.Decimal, s.Entry)
		}
	}
	return nil
}
