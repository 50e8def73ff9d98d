package risk

import (
	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// CampaignAssessment is the outcome of projecting a candidate entry onto its
// campaign's aggregate risk
type CampaignAssessment struct {
	CampaignID       string          `json:"campaign_id"`
	Sector           string          `json:"sector,omitempty"`
	NewCampaign      bool            `json:"new_campaign"`
	EntryCount       int             `json:"entry_count"`
	ExistingRiskPct  decimal.Decimal `json:"existing_risk_pct"`
	CandidateRiskPct decimal.Decimal `json:"candidate_risk_pct"`
	ProjectedRiskPct decimal.Decimal `json:"projected_risk_pct"`
	LimitPct         decimal.Decimal `json:"limit_pct"`
	SectorCampaigns  int             `json:"sector_campaigns"`
	SectorLimit      int             `json:"sector_limit"`
	Exceeded         bool            `json:"exceeded"`
	SectorExceeded   bool            `json:"sector_exceeded"`
}

// CampaignTracker enforces the aggregate risk ceiling across the scaled
// entries of one campaign, plus the cap on simultaneous campaigns per sector.
// Per-stage allocation shares are advisory only; scaling a later stage past
// its informal share is never rejected as long as the aggregate fits.
type CampaignTracker struct {
	maxCampaignPct decimal.Decimal
}

// NewCampaignTracker creates a campaign tracker using the configured
// aggregate campaign ceiling
func NewCampaignTracker(limits Limits) *CampaignTracker {
	return &CampaignTracker{maxCampaignPct: limits.CampaignMaxPct}
}

// Assess projects the candidate's risk onto its campaign. The campaign's
// existing risk is summed from open positions carrying the same campaign id;
// a projection above the ceiling is a breach, landing exactly on it is not.
// A campaign unseen in both the open book and the active campaign list is
// new, and new campaigns are additionally held to the per-sector campaign
// cap when the candidate's sector is mapped.
func (t *CampaignTracker) Assess(signal wyckoff.TradeSignal, ctx *wyckoff.PortfolioContext, candidateRiskPct decimal.Decimal) (*CampaignAssessment, error) {
	if signal.CampaignID == "" {
		return nil, NewConfigError("campaign_id", "campaign id is required")
	}
	if ctx == nil {
		return nil, NewConfigError("portfolio", "portfolio context is required")
	}

	a := &CampaignAssessment{
		CampaignID:       signal.CampaignID,
		CandidateRiskPct: candidateRiskPct,
		LimitPct:         t.maxCampaignPct,
		SectorLimit:      ctx.Correlation.WithDefaults().MaxCampaignsPerSector,
	}

	for _, p := range ctx.Open() {
		if p.CampaignID == signal.CampaignID {
			a.EntryCount++
			a.ExistingRiskPct = a.ExistingRiskPct.Add(p.RiskPct)
		}
	}

	known := a.EntryCount > 0
	for _, c := range ctx.ActiveCampaigns {
		if c.ID == signal.CampaignID {
			known = true
			break
		}
	}
	a.NewCampaign = !known

	a.ProjectedRiskPct = a.ExistingRiskPct.Add(candidateRiskPct)
	a.Exceeded = a.ProjectedRiskPct.GreaterThan(t.maxCampaignPct)

	if a.NewCampaign && a.SectorLimit > 0 {
		if info, ok := ctx.SectorFor(signal.Symbol); ok && info.Sector != "" {
			a.Sector = info.Sector
			for _, c := range ctx.ActiveCampaigns {
				if ci, ok := ctx.SectorFor(c.Symbol); ok && ci.Sector == info.Sector {
					a.SectorCampaigns++
				}
			}
			a.SectorExceeded = a.SectorCampaigns >= a.SectorLimit
		}
	}

	return a, nil
}
