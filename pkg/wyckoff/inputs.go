package wyckoff

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PatternInputs carries the structural price levels a pattern was detected
// against. Each pattern has its own input struct so a required level cannot
// be silently absent; optional levels use NullDecimal.
type PatternInputs interface {
	// Pattern returns the pattern type these inputs belong to
	Pattern() PatternType
	// Validate checks that every required level is present and positive
	Validate() error
}

// SpringInputs holds the structure behind a SPRING signal
type SpringInputs struct {
	SpringLow decimal.Decimal `json:"spring_low"`
}

// Pattern implements PatternInputs
func (SpringInputs) Pattern() PatternType { return PatternSpring }

// Validate implements PatternInputs
func (in SpringInputs) Validate() error {
	return requirePositive("spring_low", in.SpringLow)
}

// StInputs holds the structure behind a secondary-test signal. The spring low
// is optional; when absent the stop anchors to the ice level alone.
type StInputs struct {
	Ice       decimal.Decimal     `json:"ice"`
	SpringLow decimal.NullDecimal `json:"spring_low"`
}

// Pattern implements PatternInputs
func (StInputs) Pattern() PatternType { return PatternST }

// Validate implements PatternInputs
func (in StInputs) Validate() error {
	if err := requirePositive("ice", in.Ice); err != nil {
		return err
	}
	if in.SpringLow.Valid {
		return requirePositive("spring_low", in.SpringLow.Decimal)
	}
	return nil
}

// SosInputs holds the structure behind a sign-of-strength signal
type SosInputs struct {
	Ice   decimal.Decimal `json:"ice"`
	Creek decimal.Decimal `json:"creek"`
}

// Pattern implements PatternInputs
func (SosInputs) Pattern() PatternType { return PatternSOS }

// Validate implements PatternInputs
func (in SosInputs) Validate() error {
	if err := requirePositive("ice", in.Ice); err != nil {
		return err
	}
	if err := requirePositive("creek", in.Creek); err != nil {
		return err
	}
	if in.Creek.LessThan(in.Ice) {
		return fmt.Errorf("creek %s must not be below ice %s", in.Creek, in.Ice)
	}
	return nil
}

// LpsInputs holds the structure behind a last-point-of-support signal
type LpsInputs struct {
	Ice decimal.Decimal `json:"ice"`
}

// Pattern implements PatternInputs
func (LpsInputs) Pattern() PatternType { return PatternLPS }

// Validate implements PatternInputs
func (in LpsInputs) Validate() error {
	return requirePositive("ice", in.Ice)
}

// UtadInputs holds the structure behind an upthrust-after-distribution signal
type UtadInputs struct {
	UtadHigh decimal.Decimal `json:"utad_high"`
}

// Pattern implements PatternInputs
func (UtadInputs) Pattern() PatternType { return PatternUTAD }

// Validate implements PatternInputs
func (in UtadInputs) Validate() error {
	return requirePositive("utad_high", in.UtadHigh)
}

func requirePositive(name string, v decimal.Decimal) error {
	if v.Sign() <= 0 {
		return fmt.Errorf("%s must be positive, got: %s", name, v)
	}
	return nil
}
