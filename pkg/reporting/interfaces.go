package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/risk"
)

// Package reporting provides output generation for validation decisions

// ReportData bundles one reporting run: the snapshot context the decisions
// were made against and the decisions themselves, in validation order.
type ReportData struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Equity      decimal.Decimal        `json:"equity"`
	Profile     string                 `json:"profile,omitempty"`
	Results     []*risk.PositionSizing `json:"results"`
}

// Approved counts the admitted decisions
func (d *ReportData) Approved() int {
	n := 0
	for _, r := range d.Results {
		if r.Approved {
			n++
		}
	}
	return n
}

// Rejected counts the refused decisions
func (d *ReportData) Rejected() int {
	return len(d.Results) - d.Approved()
}

// CommittedRiskPct sums the admitted risk across approved decisions
func (d *ReportData) CommittedRiskPct() decimal.Decimal {
	total := decimal.Zero
	for _, r := range d.Results {
		if r.Approved {
			total = total.Add(r.RiskPct)
		}
	}
	return total
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputSummary(data *ReportData)
	OutputResult(result *risk.PositionSizing)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteDecisionsCSV(data *ReportData, path string) error
	WriteDecisionsXLSX(data *ReportData, path string) error
	WriteDecisionsJSON(data *ReportData, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(profile string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle   int
	BaseStyle     int
	NumberStyle   int
	CurrencyStyle int
	ApprovedStyle int
	RejectedStyle int
	WarnStyle     int
	SummaryStyle  int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
