package wyckoff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestPatternDirection tests that UTAD is the only short-direction pattern
func TestPatternDirection(t *testing.T) {
	assert.Equal(t, DirectionLong, PatternSpring.Direction())
	assert.Equal(t, DirectionLong, PatternST.Direction())
	assert.Equal(t, DirectionLong, PatternSOS.Direction())
	assert.Equal(t, DirectionLong, PatternLPS.Direction())
	assert.Equal(t, DirectionShort, PatternUTAD.Direction())
}

// TestPatternIsValid tests pattern type recognition
func TestPatternIsValid(t *testing.T) {
	assert.True(t, PatternSpring.IsValid())
	assert.True(t, PatternUTAD.IsValid())
	assert.False(t, PatternType("WEDGE").IsValid())
	assert.False(t, PatternType("").IsValid())
}

func TestPatternInputsValidate(t *testing.T) {
	tests := []struct {
		name    string
		inputs  PatternInputs
		wantErr bool
	}{
		{"spring ok", SpringInputs{SpringLow: decimal.NewFromInt(100)}, false},
		{"spring missing low", SpringInputs{}, true},
		{"st ok without spring", StInputs{Ice: decimal.NewFromInt(105)}, false},
		{"st ok with spring", StInputs{Ice: decimal.NewFromInt(105), SpringLow: decimal.NewNullDecimal(decimal.NewFromInt(100))}, false},
		{"st missing ice", StInputs{SpringLow: decimal.NewNullDecimal(decimal.NewFromInt(100))}, true},
		{"st negative spring", StInputs{Ice: decimal.NewFromInt(105), SpringLow: decimal.NewNullDecimal(decimal.NewFromInt(-1))}, true},
		{"sos ok", SosInputs{Ice: decimal.NewFromInt(100), Creek: decimal.NewFromInt(110)}, false},
		{"sos creek below ice", SosInputs{Ice: decimal.NewFromInt(110), Creek: decimal.NewFromInt(100)}, true},
		{"sos missing creek", SosInputs{Ice: decimal.NewFromInt(100)}, true},
		{"lps ok", LpsInputs{Ice: decimal.NewFromInt(100)}, false},
		{"lps missing ice", LpsInputs{}, true},
		{"utad ok", UtadInputs{UtadHigh: decimal.NewFromInt(120)}, false},
		{"utad missing high", UtadInputs{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inputs.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestTradeSignalValidate_LongOrdering tests entry/target ordering for long patterns
func TestTradeSignalValidate_LongOrdering(t *testing.T) {
	signal := TradeSignal{
		Symbol: "AAPL",
		Inputs: SpringInputs{SpringLow: decimal.NewFromInt(100)},
		Entry:  decimal.NewFromInt(102),
		Target: decimal.NewFromInt(114),
	}
	assert.NoError(t, signal.Validate())

	signal.Target = decimal.NewFromInt(101)
	assert.Error(t, signal.Validate())

	signal.Target = decimal.NewFromInt(114)
	signal.ProposedStop = decimal.NewNullDecimal(decimal.NewFromInt(103))
	assert.Error(t, signal.Validate(), "long proposed stop above entry must be rejected")
}

// TestTradeSignalValidate_ShortOrdering tests the inverted ordering for UTAD
func TestTradeSignalValidate_ShortOrdering(t *testing.T) {
	signal := TradeSignal{
		Symbol: "XOM",
		Inputs: UtadInputs{UtadHigh: decimal.NewFromInt(99)},
		Entry:  decimal.NewFromInt(100),
		Target: decimal.NewFromInt(94),
	}
	assert.NoError(t, signal.Validate())

	signal.Target = decimal.NewFromInt(101)
	assert.Error(t, signal.Validate(), "short target above entry must be rejected")

	signal.Target = decimal.NewFromInt(94)
	signal.ProposedStop = decimal.NewNullDecimal(decimal.NewFromInt(99))
	assert.Error(t, signal.Validate(), "short proposed stop below entry must be rejected")
}

// TestTradeSignalValidate_MissingInputs tests that absent inputs are caught
func TestTradeSignalValidate_MissingInputs(t *testing.T) {
	signal := TradeSignal{
		Symbol: "AAPL",
		Entry:  decimal.NewFromInt(102),
		Target: decimal.NewFromInt(114),
	}
	assert.Error(t, signal.Validate())
	assert.Equal(t, PatternType(""), signal.Pattern())
}

// TestPortfolioContextValidate tests snapshot integrity checks
func TestPortfolioContextValidate(t *testing.T) {
	ctx := PortfolioContext{AccountEquity: decimal.NewFromInt(10000)}
	assert.NoError(t, ctx.Validate())

	ctx.AccountEquity = decimal.Zero
	assert.Error(t, ctx.Validate())

	ctx.AccountEquity = decimal.NewFromInt(10000)
	ctx.OpenPositions = []Position{{Symbol: "AAPL", RiskPct: decimal.NewFromInt(101), Status: StatusOpen}}
	assert.Error(t, ctx.Validate(), "risk above 100% must be rejected")

	ctx.OpenPositions = []Position{{
		Symbol:      "AAPL",
		RiskPct:     decimal.NewFromInt(2),
		Status:      StatusOpen,
		VolumeScore: decimal.NewNullDecimal(decimal.NewFromInt(120)),
	}}
	assert.Error(t, ctx.Validate(), "volume score above 100 must be rejected")
}

// TestCorrelationConfigWithDefaults tests zero-value default inheritance
func TestCorrelationConfigWithDefaults(t *testing.T) {
	cfg := CorrelationConfig{}.WithDefaults()

	assert.True(t, cfg.MaxSectorPct.Equal(decimal.NewFromInt(6)))
	assert.True(t, cfg.MaxAssetClassPct.Equal(decimal.NewFromInt(15)))
	assert.True(t, cfg.MaxGeographyPct.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 3, cfg.MaxCampaignsPerSector)
	assert.Equal(t, EnforcementStrict, cfg.Enforcement)

	disabled := CorrelationConfig{MaxGeographyPct: decimal.NewFromInt(-1)}.WithDefaults()
	assert.True(t, disabled.MaxGeographyPct.IsNegative(), "negative geography limit must stay disabled")
}

// TestRMultipleConfigFloorFor tests floor lookup and default inheritance
func TestRMultipleConfigFloorFor(t *testing.T) {
	cfg := RMultipleConfig{}

	assert.True(t, cfg.FloorFor(PatternSpring).Equal(decimal.NewFromFloat(3.0)))
	assert.True(t, cfg.FloorFor(PatternST).Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, cfg.FloorFor(PatternSOS).Equal(decimal.NewFromFloat(2.0)))
	assert.True(t, cfg.FloorFor(PatternLPS).Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, cfg.FloorFor(PatternUTAD).Equal(decimal.NewFromFloat(3.0)))

	cfg.ST = decimal.NewFromFloat(2.8)
	assert.True(t, cfg.FloorFor(PatternST).Equal(decimal.NewFromFloat(2.8)))

	cfg.ST = decimal.NewFromFloat(-1)
	assert.Error(t, cfg.Validate())
}
