package wyckoff

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionStatus marks whether a position is still at risk
type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)

// Position is a snapshot of one existing position. Risk percentages are
// percent points of account equity: a RiskPct of 2 means 2% of equity is at
// risk between entry and stop.
type Position struct {
	Symbol     string          `json:"symbol"`
	RiskPct    decimal.Decimal `json:"risk_pct"`
	Status     PositionStatus  `json:"status"`
	Phase      Phase           `json:"phase,omitempty"`
	Sector     string          `json:"sector,omitempty"`
	CampaignID string          `json:"campaign_id,omitempty"`

	// VolumeScore is the 0-100 volume-confirmation score from signal scoring.
	// Positions opened before scoring existed have no score.
	VolumeScore decimal.NullDecimal `json:"volume_score"`
}

// Campaign aggregates every entry sharing one directional thesis and one
// risk budget.
type Campaign struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	TotalRiskPct decimal.Decimal `json:"total_risk_pct"`
	EntryCount   int             `json:"entry_count"`
}

// SectorInfo classifies a symbol for correlated-risk accounting. Geography
// may be empty when the caller does not track it.
type SectorInfo struct {
	Sector     string `json:"sector"`
	AssetClass string `json:"asset_class"`
	Geography  string `json:"geography,omitempty"`
}

// PortfolioContext is the consistent, immutable-per-call snapshot a
// validation runs against. The caller owns read/commit consistency; the
// engine never mutates it.
type PortfolioContext struct {
	AccountEquity   decimal.Decimal       `json:"account_equity"`
	OpenPositions   []Position            `json:"open_positions"`
	ActiveCampaigns []Campaign            `json:"active_campaigns"`
	SectorMap       map[string]SectorInfo `json:"sector_map"`
	Correlation     CorrelationConfig     `json:"correlation"`
	RMultiples      RMultipleConfig       `json:"r_multiples"`
}

// Open returns the positions currently at risk, in snapshot order
func (c PortfolioContext) Open() []Position {
	open := make([]Position, 0, len(c.OpenPositions))
	for _, p := range c.OpenPositions {
		if p.Status == StatusOpen {
			open = append(open, p)
		}
	}
	return open
}

// SectorFor looks up the sector classification for a symbol
func (c PortfolioContext) SectorFor(symbol string) (SectorInfo, bool) {
	info, ok := c.SectorMap[symbol]
	return info, ok
}

// Validate checks snapshot integrity: positive equity, percentages within
// [0, 100], and well-formed campaign and correlation data.
func (c PortfolioContext) Validate() error {
	if c.AccountEquity.Sign() <= 0 {
		return fmt.Errorf("account equity must be positive, got: %s", c.AccountEquity)
	}
	for i, p := range c.OpenPositions {
		if p.Symbol == "" {
			return fmt.Errorf("position %d: symbol is required", i)
		}
		if p.RiskPct.Sign() < 0 || p.RiskPct.GreaterThan(hundred) {
			return fmt.Errorf("position %s: risk_pct must be within [0, 100], got: %s", p.Symbol, p.RiskPct)
		}
		if p.VolumeScore.Valid {
			score := p.VolumeScore.Decimal
			if score.Sign() < 0 || score.GreaterThan(hundred) {
				return fmt.Errorf("position %s: volume score must be within [0, 100], got: %s", p.Symbol, score)
			}
		}
	}
	for _, cmp := range c.ActiveCampaigns {
		if cmp.ID == "" {
			return fmt.Errorf("campaign with symbol %s: id is required", cmp.Symbol)
		}
		if cmp.TotalRiskPct.Sign() < 0 || cmp.TotalRiskPct.GreaterThan(hundred) {
			return fmt.Errorf("campaign %s: total risk must be within [0, 100], got: %s", cmp.ID, cmp.TotalRiskPct)
		}
	}
	if err := c.Correlation.Validate(); err != nil {
		return err
	}
	return c.RMultiples.Validate()
}

var hundred = decimal.NewFromInt(100)
