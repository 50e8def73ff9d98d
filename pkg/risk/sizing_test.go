package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPositionSizerBasic verifies quantity = floor(riskBudget / unitRisk)
func TestPositionSizerBasic(t *testing.T) {
	sizer := NewPositionSizer(DefaultLimits())

	size, err := sizer.Size(decimal.NewFromInt(10000), decimal.NewFromInt(102), decimal.NewFromInt(98), decimal.NewFromInt(2))
	require.NoError(t, err)

	assert.True(t, size.RiskBudget.Equal(decimal.NewFromInt(200)))
	assert.True(t, size.UnitRisk.Equal(decimal.NewFromInt(4)))
	assert.True(t, size.Quantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, size.RiskAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, size.EffectiveRiskPct.Equal(decimal.NewFromInt(2)))
}

// TestPositionSizerFloorsQuantity verifies fractional units are floored and
// the effective risk drops accordingly
func TestPositionSizerFloorsQuantity(t *testing.T) {
	sizer := NewPositionSizer(DefaultLimits())

	size, err := sizer.Size(decimal.NewFromInt(10000), decimal.NewFromInt(100), decimal.NewFromInt(97), decimal.NewFromInt(1))
	require.NoError(t, err)

	assert.True(t, size.Quantity.Equal(decimal.NewFromInt(33)), "expected 33, got %s", size.Quantity)
	assert.True(t, size.RiskAmount.Equal(decimal.NewFromInt(99)))
	assert.True(t, size.EffectiveRiskPct.Equal(decimal.NewFromFloat(0.99)))
	assert.True(t, size.RiskAmount.LessThanOrEqual(size.RiskBudget))
}

// TestPositionSizerClampsToCeiling verifies a request above the per-trade
// maximum is sized at the ceiling
func TestPositionSizerClampsToCeiling(t *testing.T) {
	sizer := NewPositionSizer(DefaultLimits())

	size, err := sizer.Size(decimal.NewFromInt(10000), decimal.NewFromInt(102), decimal.NewFromInt(98), decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.True(t, size.RiskPct.Equal(decimal.NewFromInt(2)))
	assert.True(t, size.RiskBudget.Equal(decimal.NewFromInt(200)))
}

// TestPositionSizerZeroQuantity verifies a budget smaller than one unit of
// risk sizes to zero without error
func TestPositionSizerZeroQuantity(t *testing.T) {
	sizer := NewPositionSizer(DefaultLimits())

	size, err := sizer.Size(decimal.NewFromInt(100), decimal.NewFromInt(102), decimal.NewFromInt(98), decimal.NewFromInt(1))
	require.NoError(t, err)

	assert.True(t, size.Quantity.IsZero())
	assert.True(t, size.RiskAmount.IsZero())
}

// TestPositionSizerConfigErrors exercises the input guards
func TestPositionSizerConfigErrors(t *testing.T) {
	sizer := NewPositionSizer(DefaultLimits())

	_, err := sizer.Size(decimal.Zero, decimal.NewFromInt(102), decimal.NewFromInt(98), decimal.NewFromInt(1))
	assert.True(t, IsConfigError(err), "zero equity should be a config error")

	_, err = sizer.Size(decimal.NewFromInt(10000), decimal.NewFromInt(102), decimal.NewFromInt(102), decimal.NewFromInt(1))
	assert.True(t, IsConfigError(err), "stop at entry should be a config error")

	_, err = sizer.Size(decimal.NewFromInt(10000), decimal.NewFromInt(102), decimal.NewFromInt(98), decimal.Zero)
	assert.True(t, IsConfigError(err), "zero risk should be a config error")
}
