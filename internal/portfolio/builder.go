// Package portfolio assembles the consistent snapshots a validation runs
// against. The builder derives campaign aggregates from position data so
// callers maintain one list of positions instead of two parallel books.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/risk"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// Builder accumulates positions and classifications and produces a validated
// PortfolioContext. Campaigns are derived from open positions in first-seen
// order; an open position without a campaign ID is wrapped in an implicit
// single-symbol campaign so correlated-risk accounting still sees its
// exposure.
type Builder struct {
	equity      decimal.Decimal
	positions   []wyckoff.Position
	sectors     map[string]wyckoff.SectorInfo
	correlation wyckoff.CorrelationConfig
	rmultiples  wyckoff.RMultipleConfig
}

// NewBuilder creates a builder for an account with the given equity
func NewBuilder(equity decimal.Decimal) *Builder {
	return &Builder{
		equity:  equity,
		sectors: make(map[string]wyckoff.SectorInfo),
	}
}

// WithCorrelation sets the correlation limits carried by the snapshot
func (b *Builder) WithCorrelation(cfg wyckoff.CorrelationConfig) *Builder {
	b.correlation = cfg
	return b
}

// WithRMultiples sets the per-pattern R-multiple floors carried by the snapshot
func (b *Builder) WithRMultiples(cfg wyckoff.RMultipleConfig) *Builder {
	b.rmultiples = cfg
	return b
}

// AddPosition appends a position to the book
func (b *Builder) AddPosition(p wyckoff.Position) *Builder {
	b.positions = append(b.positions, p)
	return b
}

// MapSector registers the sector classification for a symbol
func (b *Builder) MapSector(symbol string, info wyckoff.SectorInfo) *Builder {
	b.sectors[symbol] = info
	return b
}

// Build assembles and validates the snapshot. Closed positions stay in the
// book for record keeping but contribute nothing to campaign risk.
func (b *Builder) Build() (*wyckoff.PortfolioContext, error) {
	ctx := &wyckoff.PortfolioContext{
		AccountEquity:   b.equity,
		OpenPositions:   append([]wyckoff.Position(nil), b.positions...),
		ActiveCampaigns: b.deriveCampaigns(),
		SectorMap:       b.sectors,
		Correlation:     b.correlation,
		RMultiples:      b.rmultiples,
	}

	if err := ctx.Validate(); err != nil {
		return nil, risk.WrapConfigError(err, "portfolio", "snapshot validation failed")
	}
	return ctx, nil
}

// deriveCampaigns groups open positions by campaign ID, falling back to the
// symbol for standalone positions
func (b *Builder) deriveCampaigns() []wyckoff.Campaign {
	index := make(map[string]int)
	campaigns := make([]wyckoff.Campaign, 0)

	for _, p := range b.positions {
		if p.Status != wyckoff.StatusOpen {
			continue
		}

		id := p.CampaignID
		if id == "" {
			id = p.Symbol
		}

		i, ok := index[id]
		if !ok {
			index[id] = len(campaigns)
			campaigns = append(campaigns, wyckoff.Campaign{ID: id, Symbol: p.Symbol})
			i = index[id]
		}

		campaigns[i].TotalRiskPct = campaigns[i].TotalRiskPct.Add(p.RiskPct)
		campaigns[i].EntryCount++
	}

	return campaigns
}
