package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyckoffd/risk-engine/pkg/risk"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

func openPosition(symbol, campaignID string, riskPct float64) wyckoff.Position {
	return wyckoff.Position{
		Symbol:     symbol,
		RiskPct:    decimal.NewFromFloat(riskPct),
		Status:     wyckoff.StatusOpen,
		Phase:      wyckoff.PhaseC,
		CampaignID: campaignID,
	}
}

// TestBuildDerivesCampaignsInFirstSeenOrder groups open positions by
// campaign ID and sums their risk per campaign.
func TestBuildDerivesCampaignsInFirstSeenOrder(t *testing.T) {
	ctx, err := NewBuilder(decimal.NewFromInt(100000)).
		AddPosition(openPosition("BTCUSDT", "BTC-ACC-1", 1.5)).
		AddPosition(openPosition("ETHUSDT", "ETH-ACC-1", 1.0)).
		AddPosition(openPosition("BTCUSDT", "BTC-ACC-1", 0.5)).
		Build()
	require.NoError(t, err)

	require.Len(t, ctx.ActiveCampaigns, 2)

	btc := ctx.ActiveCampaigns[0]
	assert.Equal(t, "BTC-ACC-1", btc.ID)
	assert.Equal(t, "BTCUSDT", btc.Symbol)
	assert.Equal(t, 2, btc.EntryCount)
	assert.Equal(t, "2", btc.TotalRiskPct.String())

	eth := ctx.ActiveCampaigns[1]
	assert.Equal(t, "ETH-ACC-1", eth.ID)
	assert.Equal(t, 1, eth.EntryCount)
	assert.Equal(t, "1", eth.TotalRiskPct.String())
}

// TestBuildWrapsStandalonePositions gives a campaign-less open position an
// implicit campaign keyed by its symbol, so correlated-risk accounting sees
// its exposure.
func TestBuildWrapsStandalonePositions(t *testing.T) {
	ctx, err := NewBuilder(decimal.NewFromInt(50000)).
		AddPosition(openPosition("SOLUSDT", "", 1.2)).
		Build()
	require.NoError(t, err)

	require.Len(t, ctx.ActiveCampaigns, 1)
	assert.Equal(t, "SOLUSDT", ctx.ActiveCampaigns[0].ID)
	assert.Equal(t, "SOLUSDT", ctx.ActiveCampaigns[0].Symbol)
	assert.Equal(t, "1.2", ctx.ActiveCampaigns[0].TotalRiskPct.String())
}

// TestBuildSkipsClosedPositions keeps closed positions in the book but
// excludes them from campaign aggregates.
func TestBuildSkipsClosedPositions(t *testing.T) {
	closed := openPosition("BTCUSDT", "BTC-ACC-1", 2.0)
	closed.Status = wyckoff.StatusClosed

	ctx, err := NewBuilder(decimal.NewFromInt(100000)).
		AddPosition(closed).
		AddPosition(openPosition("ETHUSDT", "ETH-ACC-1", 1.0)).
		Build()
	require.NoError(t, err)

	assert.Len(t, ctx.OpenPositions, 2)
	assert.Len(t, ctx.Open(), 1)
	require.Len(t, ctx.ActiveCampaigns, 1)
	assert.Equal(t, "ETH-ACC-1", ctx.ActiveCampaigns[0].ID)
}

// TestBuildCarriesConfigsAndSectors passes the correlation limits, floors,
// and sector map through to the snapshot unchanged.
func TestBuildCarriesConfigsAndSectors(t *testing.T) {
	corr := wyckoff.DefaultCorrelationConfig()
	corr.MaxGeographyPct = decimal.NewFromInt(-1)
	floors := wyckoff.RMultipleConfig{Spring: decimal.NewFromFloat(3.5)}

	ctx, err := NewBuilder(decimal.NewFromInt(100000)).
		WithCorrelation(corr).
		WithRMultiples(floors).
		MapSector("BTCUSDT", wyckoff.SectorInfo{Sector: "layer1", AssetClass: "crypto", Geography: "global"}).
		Build()
	require.NoError(t, err)

	assert.True(t, ctx.Correlation.MaxGeographyPct.Equal(decimal.NewFromInt(-1)))
	assert.True(t, ctx.RMultiples.Spring.Equal(decimal.NewFromFloat(3.5)))

	info, ok := ctx.SectorFor("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "layer1", info.Sector)
}

// TestBuildRejectsInvalidSnapshots surfaces snapshot validation failures as
// config errors.
func TestBuildRejectsInvalidSnapshots(t *testing.T) {
	_, err := NewBuilder(decimal.Zero).Build()
	require.Error(t, err)
	assert.True(t, risk.IsConfigError(err))

	bad := openPosition("BTCUSDT", "", -1)
	_, err = NewBuilder(decimal.NewFromInt(1000)).AddPosition(bad).Build()
	require.Error(t, err)
	assert.True(t, risk.IsConfigError(err))
}

// TestBuiltSnapshotFeedsEngine runs a full validation against a built
// snapshot, covering the builder-to-engine seam.
func TestBuiltSnapshotFeedsEngine(t *testing.T) {
	layer1 := wyckoff.SectorInfo{Sector: "layer1", AssetClass: "crypto", Geography: "global"}

	ctx, err := NewBuilder(decimal.NewFromInt(50000)).
		AddPosition(openPosition("ETHUSDT", "ETH-ACC-1", 1.0)).
		MapSector("BTCUSDT", layer1).
		MapSector("ETHUSDT", layer1).
		Build()
	require.NoError(t, err)

	engine, err := risk.NewEngine(risk.EngineConfig{})
	require.NoError(t, err)

	result, err := engine.Validate(risk.ValidationRequest{
		SignalID: "builder-e2e",
		Signal: wyckoff.TradeSignal{
			Symbol: "BTCUSDT",
			Inputs: wyckoff.SpringInputs{SpringLow: decimal.NewFromInt(100)},
			Entry:  decimal.NewFromInt(102),
			Target: decimal.NewFromInt(118),
		},
		RiskPct: decimal.NewFromInt(1),
	}, ctx)
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.True(t, result.Quantity.IsPositive())
}
