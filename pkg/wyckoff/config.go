package wyckoff

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EnforcementMode controls how correlated-risk breaches are handled
type EnforcementMode string

const (
	// EnforcementStrict rejects the trade on the first breached dimension
	EnforcementStrict EnforcementMode = "strict"
	// EnforcementPermissive demotes breaches to warnings and admits the trade
	EnforcementPermissive EnforcementMode = "permissive"
)

// Default correlation limits, percent of account equity
var (
	DefaultMaxSectorPct     = decimal.NewFromInt(6)
	DefaultMaxAssetClassPct = decimal.NewFromInt(15)
	DefaultMaxGeographyPct  = decimal.NewFromInt(20)
)

// DefaultMaxCampaignsPerSector caps simultaneous campaigns in one sector
const DefaultMaxCampaignsPerSector = 3

// CorrelationConfig bounds cross-campaign exposure. Limits are percent of
// equity; a negative geography limit disables the geography dimension.
type CorrelationConfig struct {
	MaxSectorPct          decimal.Decimal `json:"max_sector_pct"`
	MaxAssetClassPct      decimal.Decimal `json:"max_asset_class_pct"`
	MaxGeographyPct       decimal.Decimal `json:"max_geography_pct"`
	MaxCampaignsPerSector int             `json:"max_campaigns_per_sector"`
	Enforcement           EnforcementMode `json:"enforcement"`
}

// DefaultCorrelationConfig returns the standard correlation limits
func DefaultCorrelationConfig() CorrelationConfig {
	return CorrelationConfig{
		MaxSectorPct:          DefaultMaxSectorPct,
		MaxAssetClassPct:      DefaultMaxAssetClassPct,
		MaxGeographyPct:       DefaultMaxGeographyPct,
		MaxCampaignsPerSector: DefaultMaxCampaignsPerSector,
		Enforcement:           EnforcementStrict,
	}
}

// WithDefaults returns a copy with zero-valued fields replaced by defaults.
// Geography stays disabled when the limit is negative.
func (c CorrelationConfig) WithDefaults() CorrelationConfig {
	d := DefaultCorrelationConfig()
	if c.MaxSectorPct.IsZero() {
		c.MaxSectorPct = d.MaxSectorPct
	}
	if c.MaxAssetClassPct.IsZero() {
		c.MaxAssetClassPct = d.MaxAssetClassPct
	}
	if c.MaxGeographyPct.IsZero() {
		c.MaxGeographyPct = d.MaxGeographyPct
	}
	if c.MaxCampaignsPerSector == 0 {
		c.MaxCampaignsPerSector = d.MaxCampaignsPerSector
	}
	if c.Enforcement == "" {
		c.Enforcement = d.Enforcement
	}
	return c
}

// Validate checks the configured limits and enforcement mode
func (c CorrelationConfig) Validate() error {
	if c.MaxSectorPct.Sign() < 0 || c.MaxSectorPct.GreaterThan(hundred) {
		return fmt.Errorf("max sector correlation must be within [0, 100], got: %s", c.MaxSectorPct)
	}
	if c.MaxAssetClassPct.Sign() < 0 || c.MaxAssetClassPct.GreaterThan(hundred) {
		return fmt.Errorf("max asset class correlation must be within [0, 100], got: %s", c.MaxAssetClassPct)
	}
	if c.MaxGeographyPct.GreaterThan(hundred) {
		return fmt.Errorf("max geography correlation must not exceed 100, got: %s", c.MaxGeographyPct)
	}
	if c.MaxCampaignsPerSector < 0 {
		return fmt.Errorf("max campaigns per sector must not be negative, got: %d", c.MaxCampaignsPerSector)
	}
	switch c.Enforcement {
	case "", EnforcementStrict, EnforcementPermissive:
		return nil
	}
	return fmt.Errorf("unknown enforcement mode: %s", c.Enforcement)
}

// Default R-multiple floors by pattern
var (
	DefaultSpringFloor = decimal.NewFromFloat(3.0)
	DefaultStFloor     = decimal.NewFromFloat(2.5)
	DefaultSosFloor    = decimal.NewFromFloat(2.0)
	DefaultLpsFloor    = decimal.NewFromFloat(2.5)
	DefaultUtadFloor   = decimal.NewFromFloat(3.0)
)

// RMultipleConfig holds the minimum reward:risk ratio per pattern. Zero
// values inherit the defaults, so a partially populated config keeps the
// standard floors.
type RMultipleConfig struct {
	Spring decimal.Decimal `json:"spring"`
	ST     decimal.Decimal `json:"st"`
	SOS    decimal.Decimal `json:"sos"`
	LPS    decimal.Decimal `json:"lps"`
	UTAD   decimal.Decimal `json:"utad"`
}

// DefaultRMultipleConfig returns the standard per-pattern floors
func DefaultRMultipleConfig() RMultipleConfig {
	return RMultipleConfig{
		Spring: DefaultSpringFloor,
		ST:     DefaultStFloor,
		SOS:    DefaultSosFloor,
		LPS:    DefaultLpsFloor,
		UTAD:   DefaultUtadFloor,
	}
}

// FloorFor returns the minimum R-multiple for the pattern. Unknown patterns
// get the most conservative floor.
func (c RMultipleConfig) FloorFor(p PatternType) decimal.Decimal {
	switch p {
	case PatternSpring:
		return orDefault(c.Spring, DefaultSpringFloor)
	case PatternST:
		return orDefault(c.ST, DefaultStFloor)
	case PatternSOS:
		return orDefault(c.SOS, DefaultSosFloor)
	case PatternLPS:
		return orDefault(c.LPS, DefaultLpsFloor)
	case PatternUTAD:
		return orDefault(c.UTAD, DefaultUtadFloor)
	}
	return DefaultSpringFloor
}

// Validate rejects negative floors; zero means "use the default"
func (c RMultipleConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"spring", c.Spring},
		{"st", c.ST},
		{"sos", c.SOS},
		{"lps", c.LPS},
		{"utad", c.UTAD},
	} {
		if f.value.Sign() < 0 {
			return fmt.Errorf("%s R-multiple floor must not be negative, got: %s", f.name, f.value)
		}
	}
	return nil
}

func orDefault(v, fallback decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return fallback
	}
	return v
}
