package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatReport formats the report as indented JSON bytes
func (f *DefaultJSONFormatter) FormatReport(data *ReportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// PrintReport prints the report as JSON to console
func (f *DefaultJSONFormatter) PrintReport(data *ReportData) {
	out, _ := f.FormatReport(data)
	fmt.Println(string(out))
}

// WriteDecisionsJSON writes the full report, including per-stage traces and
// warnings, to a JSON file.
func (f *DefaultJSONFormatter) WriteDecisionsJSON(data *ReportData, path string) error {
	out, err := f.FormatReport(data)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, out, 0644)
}

// Package-level convenience function
func WriteDecisionsJSON(data *ReportData, path string) error {
	formatter := NewDefaultJSONFormatter()
	return formatter.WriteDecisionsJSON(data, path)
}
