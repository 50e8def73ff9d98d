package reporting

import (
	"path/filepath"

	"github.com/wyckoffd/risk-engine/pkg/risk"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter() *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputSummary(data *ReportData) {
	r.console.OutputSummary(data)
}

func (r *DefaultReporter) OutputResult(result *risk.PositionSizing) {
	r.console.OutputResult(result)
}

// File output methods
func (r *DefaultReporter) WriteDecisionsCSV(data *ReportData, path string) error {
	return r.csv.WriteDecisionsCSV(data, path)
}

func (r *DefaultReporter) WriteDecisionsXLSX(data *ReportData, path string) error {
	return r.excel.WriteDecisionsXLSX(data, path)
}

func (r *DefaultReporter) WriteDecisionsJSON(data *ReportData, path string) error {
	return r.json.WriteDecisionsJSON(data, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(profile string) string {
	return r.paths.GetDefaultOutputDir(profile)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: NewDefaultReporter(),
		config:   config,
	}
}

// ReportResults outputs the decision report according to configuration and
// returns the file paths written.
func (m *ReportingManager) ReportResults(data *ReportData) ([]string, error) {
	if m.config.EnableConsole {
		m.reporter.OutputSummary(data)
	}

	if !m.config.EnableFiles {
		return nil, nil
	}

	outputDir := m.config.OutputDirectory
	if outputDir == "" {
		outputDir = m.reporter.GetDefaultOutputDir(data.Profile)
	}

	var written []string

	if m.config.CSVEnabled {
		path := filepath.Join(outputDir, TimestampedFilename("decisions", "csv", data.GeneratedAt))
		if err := m.reporter.WriteDecisionsCSV(data, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if m.config.ExcelEnabled {
		path := filepath.Join(outputDir, TimestampedFilename("decisions", "xlsx", data.GeneratedAt))
		if err := m.reporter.WriteDecisionsXLSX(data, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if m.config.JSONEnabled {
		path := filepath.Join(outputDir, TimestampedFilename("decisions", "json", data.GeneratedAt))
		if err := m.reporter.WriteDecisionsJSON(data, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}
