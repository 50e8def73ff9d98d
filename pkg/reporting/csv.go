package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteDecisionsCSV writes one row per decision plus a trailing summary row
func (r *DefaultCSVReporter) WriteDecisionsCSV(data *ReportData, path string) error {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// If the user requests an Excel file, delegate to Excel writer
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteDecisionsXLSX(data, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Signal",
		"Symbol",
		"Pattern",
		"Decision",
		"Stage",
		"Reason",
		"Risk_%",
		"Risk_$",
		"Quantity",
		"R_Multiple",
	}); err != nil {
		return err
	}

	for _, result := range data.Results {
		row := []string{
			result.SignalID,
			result.Symbol,
			string(result.Pattern),
			decisionString(result),
			lastStage(result),
			result.RejectReason,
			result.RiskPct.StringFixed(2),
			result.RiskAmount.StringFixed(2),
			result.Quantity.String(),
			result.RMultiple.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("SUMMARY: approved=%d; rejected=%d; committed_risk=%s%%; equity=$%s",
		data.Approved(), data.Rejected(), data.CommittedRiskPct().StringFixed(2), data.Equity.StringFixed(2))

	// Create summary row with empty fields except the last column
	summaryRow := make([]string, 10)
	summaryRow[9] = summary
	return w.Write(summaryRow)
}

// Package-level convenience function
func WriteDecisionsCSV(data *ReportData, path string) error {
	reporter := NewDefaultCSVReporter()
	return reporter.WriteDecisionsCSV(data, path)
}
