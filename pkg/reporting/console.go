package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wyckoffd/risk-engine/pkg/risk"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a new console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout}
}

// OutputSummary prints one row per decision plus run totals
func (r *DefaultConsoleReporter) OutputSummary(data *ReportData) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("VALIDATION SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Signal", "Symbol", "Pattern", "Decision", "Stage", "Risk %", "Qty", "R"})

	for _, result := range data.Results {
		t.AppendRow(table.Row{
			result.SignalID,
			result.Symbol,
			result.Pattern,
			decisionString(result),
			lastStage(result),
			result.RiskPct.StringFixed(2),
			result.Quantity.String(),
			result.RMultiple.StringFixed(2),
		})
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{
		"", "", "", fmt.Sprintf("%d/%d approved", data.Approved(), len(data.Results)),
		"", data.CommittedRiskPct().StringFixed(2), "", "",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()

	fmt.Fprintf(r.out, "\n💼 Equity: $%s | Generated: %s\n",
		data.Equity.StringFixed(2), data.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "✅ Approved: %d | ❌ Rejected: %d | 📊 Committed Risk: %s%%\n\n",
		data.Approved(), data.Rejected(), data.CommittedRiskPct().StringFixed(2))
}

// OutputResult prints the stage-by-stage pipeline trace for one decision
func (r *DefaultConsoleReporter) OutputResult(result *risk.PositionSizing) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("PIPELINE %s (%s)", result.Symbol, result.Pattern))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Stage", "Status", "Message"})
	for _, stage := range result.Stages {
		t.AppendRow(table.Row{stage.Name, statusEmoji(stage.Status), stage.Message})
	}

	if len(result.Warnings) > 0 {
		t.AppendSeparator()
		for _, w := range result.Warnings {
			t.AppendRow(table.Row{"advisory", "⚠️", fmt.Sprintf("[%s] %s", w.Code, w.Message)})
		}
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 3, WidthMin: 30, WidthMax: 70, Align: text.AlignLeft},
	})

	t.Render()

	if result.Approved {
		fmt.Fprintf(r.out, "✅ %s: %s units at %s%% risk ($%s)\n\n",
			result.Symbol, result.Quantity.String(), result.RiskPct.StringFixed(2), result.RiskAmount.StringFixed(2))
	} else {
		fmt.Fprintf(r.out, "❌ %s rejected at %s: %s\n\n",
			result.Symbol, result.RejectStage, result.RejectReason)
	}
}

// decisionString renders the decision column, marking overridden admissions
func decisionString(result *risk.PositionSizing) string {
	if !result.Approved {
		return "REJECTED"
	}
	if result.Overridden {
		return "APPROVED*"
	}
	return "APPROVED"
}

// lastStage names the stage the pipeline stopped at
func lastStage(result *risk.PositionSizing) string {
	if len(result.Stages) == 0 {
		return ""
	}
	return result.Stages[len(result.Stages)-1].Name
}

func statusEmoji(status risk.StageStatus) string {
	switch status {
	case risk.StatusPass:
		return "✅ PASS"
	case risk.StatusWarn:
		return "⚠️ WARN"
	case risk.StatusFail:
		return "❌ FAIL"
	}
	return string(status)
}

// Package-level convenience function
func OutputConsole(data *ReportData) {
	reporter := NewDefaultConsoleReporter()
	reporter.OutputSummary(data)
}
