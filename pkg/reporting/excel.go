package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wyckoffd/risk-engine/pkg/risk"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteDecisionsXLSX writes the decision workbook: a summary sheet with one
// row per decision, a stages sheet with the full pipeline trace, and a
// warnings sheet with every advisory.
func (r *DefaultExcelReporter) WriteDecisionsXLSX(data *ReportData, path string) error {
	// Ensure directory exists before creating file
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const stagesSheet = "Stages"
	const warningsSheet = "Warnings"

	// Replace default sheet and create additional sheets
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(stagesSheet)
	fx.NewSheet(warningsSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, data, styles); err != nil {
		return err
	}

	if err := r.writeStagesSheet(fx, stagesSheet, data, styles); err != nil {
		return err
	}

	if err := r.writeWarningsSheet(fx, warningsSheet, data, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates the workbook styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	lightBorders := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Base style (light borders)
	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Number style (right aligned, two decimals)
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Currency style (right aligned, $ format)
	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Approved style (light green background)
	styles.ApprovedStyle, err = fx.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"E6FFE6"},
			Pattern: 1,
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Rejected style (red text)
	styles.RejectedStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: "FF0000",
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Warning style (light amber background)
	styles.WarnStyle, err = fx.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFF2CC"},
			Pattern: 1,
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Summary style (blue background, bold white text)
	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 2},
			{Type: "right", Color: "000000", Style: 2},
			{Type: "top", Color: "000000", Style: 2},
			{Type: "bottom", Color: "000000", Style: 2},
		},
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

// writeSummarySheet writes one row per decision
func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, data *ReportData, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 16) // Signal
	fx.SetColWidth(sheet, "B", "B", 12) // Symbol
	fx.SetColWidth(sheet, "C", "C", 10) // Pattern
	fx.SetColWidth(sheet, "D", "D", 12) // Decision
	fx.SetColWidth(sheet, "E", "E", 18) // Stage
	fx.SetColWidth(sheet, "F", "F", 55) // Reason
	fx.SetColWidth(sheet, "G", "G", 10) // Risk %
	fx.SetColWidth(sheet, "H", "H", 12) // Risk $
	fx.SetColWidth(sheet, "I", "I", 12) // Quantity
	fx.SetColWidth(sheet, "J", "J", 12) // R Multiple
	fx.SetColWidth(sheet, "K", "K", 12) // Stop
	fx.SetColWidth(sheet, "L", "L", 12) // Heat After

	headers := []string{
		"Signal", "Symbol", "Pattern", "Decision", "Stage", "Reason",
		"Risk %", "Risk $", "Quantity", "R Multiple", "Stop", "Heat After %",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, result := range data.Results {
		stop := ""
		if result.Stop != nil {
			stop = result.Stop.Price.String()
		}

		values := []interface{}{
			result.SignalID,
			result.Symbol,
			string(result.Pattern),
			decisionString(result),
			lastStage(result),
			result.RejectReason,
			result.RiskPct.InexactFloat64(),
			result.RiskAmount.InexactFloat64(),
			result.Quantity.InexactFloat64(),
			result.RMultiple.InexactFloat64(),
			stop,
			result.HeatAfter.InexactFloat64(),
		}

		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			fx.SetCellValue(sheet, cell, v)

			style := styles.BaseStyle
			switch {
			case i == 3 && result.Approved:
				style = styles.ApprovedStyle
			case i == 3 && !result.Approved:
				style = styles.RejectedStyle
			case i == 6 || i == 9 || i == 11:
				style = styles.NumberStyle
			case i == 7:
				style = styles.CurrencyStyle
			}
			fx.SetCellStyle(sheet, cell, cell, style)
		}
		row++
	}

	// Totals row
	totals := []interface{}{
		"TOTALS", "", "",
		fmt.Sprintf("%d/%d approved", data.Approved(), len(data.Results)),
		"", "",
		data.CommittedRiskPct().InexactFloat64(),
		"", "", "", "", "",
	}
	for i, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		fx.SetCellValue(sheet, cell, v)
		fx.SetCellStyle(sheet, cell, cell, styles.SummaryStyle)
	}

	return nil
}

// writeStagesSheet writes the full pipeline trace, one row per stage result
func (r *DefaultExcelReporter) writeStagesSheet(fx *excelize.File, sheet string, data *ReportData, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 16) // Signal
	fx.SetColWidth(sheet, "B", "B", 20) // Stage
	fx.SetColWidth(sheet, "C", "C", 10) // Status
	fx.SetColWidth(sheet, "D", "D", 60) // Message
	fx.SetColWidth(sheet, "E", "E", 70) // Details

	headers := []string{"Signal", "Stage", "Status", "Message", "Details"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, result := range data.Results {
		for _, stage := range result.Stages {
			values := []interface{}{
				result.SignalID,
				stage.Name,
				string(stage.Status),
				stage.Message,
				formatMetrics(stage.Metrics),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				fx.SetCellValue(sheet, cell, v)

				style := styles.BaseStyle
				if i == 2 {
					switch stage.Status {
					case risk.StatusWarn:
						style = styles.WarnStyle
					case risk.StatusFail:
						style = styles.RejectedStyle
					}
				}
				fx.SetCellStyle(sheet, cell, cell, style)
			}
			row++
		}
	}

	return nil
}

// writeWarningsSheet writes every advisory attached to a decision
func (r *DefaultExcelReporter) writeWarningsSheet(fx *excelize.File, sheet string, data *ReportData, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 16) // Signal
	fx.SetColWidth(sheet, "B", "B", 26) // Code
	fx.SetColWidth(sheet, "C", "C", 90) // Message

	headers := []string{"Signal", "Code", "Message"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, result := range data.Results {
		for _, w := range result.Warnings {
			values := []interface{}{result.SignalID, w.Code, w.Message}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				fx.SetCellValue(sheet, cell, v)
				fx.SetCellStyle(sheet, cell, cell, styles.WarnStyle)
			}
			row++
		}
	}

	return nil
}

// formatMetrics renders stage metrics as a stable key=value list
func formatMetrics(metrics map[string]string) string {
	if len(metrics) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, metrics[k]))
	}
	return strings.Join(parts, "; ")
}

// Package-level convenience function
func WriteDecisionsXLSX(data *ReportData, path string) error {
	reporter := NewDefaultExcelReporter()
	return reporter.WriteDecisionsXLSX(data, path)
}
