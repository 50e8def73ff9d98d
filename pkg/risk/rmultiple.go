package risk

import (
	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// RewardRisk captures the reward-to-risk assessment of a signal against its
// structural stop
type RewardRisk struct {
	Reward     decimal.Decimal `json:"reward"`
	Risk       decimal.Decimal `json:"risk"`
	RMultiple  decimal.Decimal `json:"r_multiple"`
	Floor      decimal.Decimal `json:"floor"`
	MeetsFloor bool            `json:"meets_floor"`
}

// ComputeRewardRisk measures the signal's reward per unit of risk and checks
// it against the pattern's minimum. Distances are taken in the trade's
// direction, so a UTAD short measures reward below entry and risk above it.
// An R-multiple exactly at the floor passes.
func ComputeRewardRisk(signal wyckoff.TradeSignal, stop *StructuralStop, cfg wyckoff.RMultipleConfig) (*RewardRisk, error) {
	if stop == nil {
		return nil, NewConfigError("stop", "structural stop is required")
	}

	var reward, risk decimal.Decimal
	if signal.Direction() == wyckoff.DirectionShort {
		reward = signal.Entry.Sub(signal.Target)
		risk = stop.Price.Sub(signal.Entry)
	} else {
		reward = signal.Target.Sub(signal.Entry)
		risk = signal.Entry.Sub(stop.Price)
	}

	if risk.Sign() <= 0 {
		return nil, ConfigErrorf("stop", "risk distance must be positive, got: %s (entry %s, stop %s)",
			risk, signal.Entry, stop.Price)
	}

	floor := cfg.FloorFor(signal.Pattern())
	rm := reward.Div(risk)

	return &RewardRisk{
		Reward:     reward,
		Risk:       risk,
		RMultiple:  rm,
		Floor:      floor,
		MeetsFloor: !rm.LessThan(floor),
	}, nil
}
