// Package wyckoff defines the domain model shared across the risk engine:
// trade signals annotated with Wyckoff pattern structure, open positions,
// campaigns, and the immutable portfolio snapshot every validation runs
// against.
package wyckoff

// PatternType identifies the Wyckoff event that produced a trade signal
type PatternType string

// Supported Wyckoff entry patterns
const (
	PatternSpring PatternType = "SPRING" // false breakdown below range support (Phase C)
	PatternST     PatternType = "ST"     // secondary test of support
	PatternSOS    PatternType = "SOS"    // sign-of-strength breakout above resistance
	PatternLPS    PatternType = "LPS"    // last point of support after a breakout
	PatternUTAD   PatternType = "UTAD"   // upthrust after distribution, short setup
)

// TradeDirection is the side a pattern trades on
type TradeDirection string

const (
	DirectionLong  TradeDirection = "LONG"
	DirectionShort TradeDirection = "SHORT"
)

// Direction returns the trade direction implied by the pattern. UTAD is the
// only short pattern; every accumulation pattern trades long.
func (p PatternType) Direction() TradeDirection {
	if p == PatternUTAD {
		return DirectionShort
	}
	return DirectionLong
}

// IsValid reports whether p is a recognized pattern type
func (p PatternType) IsValid() bool {
	switch p {
	case PatternSpring, PatternST, PatternSOS, PatternLPS, PatternUTAD:
		return true
	}
	return false
}

// Phase is a Wyckoff phase label (A through E) attached to an open position
type Phase string

const (
	PhaseA       Phase = "A"
	PhaseB       Phase = "B"
	PhaseC       Phase = "C"
	PhaseD       Phase = "D"
	PhaseE       Phase = "E"
	PhaseUnknown Phase = "UNKNOWN"
)

// IsKnown reports whether the phase is one of the labeled A-E phases
func (p Phase) IsKnown() bool {
	switch p {
	case PhaseA, PhaseB, PhaseC, PhaseD, PhaseE:
		return true
	}
	return false
}
