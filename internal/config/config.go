// Package config loads the engine configuration from defaults, an optional
// JSON file, environment overrides, and a named risk profile, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/pkg/risk"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// Config holds the full runtime configuration of the risk engine
type Config struct {
	Profile      string `json:"profile"`       // Named risk profile to apply
	ProfilesFile string `json:"profiles_file"` // Optional YAML file with custom profiles
	LogLevel     string `json:"log_level"`     // zerolog level name
	LogJSON      bool   `json:"log_json"`      // JSON log output instead of console
	LogFile      string `json:"log_file"`      // Optional JSON log file, empty logs to stderr only
	MetricsAddr  string `json:"metrics_addr"`  // Listen address for /metrics and /healthz, empty disables
	AuditFile    string `json:"audit_file"`    // JSONL audit trail path, empty keeps entries in memory
	ReportDir    string `json:"report_dir"`    // Output directory for generated reports

	Limits      LimitsConfig      `json:"limits"`
	Correlation CorrelationConfig `json:"correlation"`
	RMultiples  RMultipleConfig   `json:"r_multiples"`
}

// LimitsConfig holds engine-level risk limits, percent of account equity
type LimitsConfig struct {
	PerTradeMaxPct float64 `json:"per_trade_max_pct" yaml:"per_trade_max_pct"` // Single-trade risk cap
	CampaignMaxPct float64 `json:"campaign_max_pct" yaml:"campaign_max_pct"`   // Cumulative campaign risk cap
	HeatCapPct     float64 `json:"heat_cap_pct" yaml:"heat_cap_pct"`           // Absolute portfolio heat ceiling
	DefaultRiskPct float64 `json:"default_risk_pct" yaml:"default_risk_pct"`   // Risk applied when a request omits one
}

// CorrelationConfig bounds cross-campaign exposure per correlation dimension
type CorrelationConfig struct {
	MaxSectorPct          float64 `json:"max_sector_pct" yaml:"max_sector_pct"`
	MaxAssetClassPct      float64 `json:"max_asset_class_pct" yaml:"max_asset_class_pct"`
	MaxGeographyPct       float64 `json:"max_geography_pct" yaml:"max_geography_pct"` // Negative disables the dimension
	MaxCampaignsPerSector int     `json:"max_campaigns_per_sector" yaml:"max_campaigns_per_sector"`
	Enforcement           string  `json:"enforcement" yaml:"enforcement"` // strict or permissive
}

// RMultipleConfig holds minimum reward:risk floors per entry pattern
type RMultipleConfig struct {
	Spring float64 `json:"spring" yaml:"spring"`
	ST     float64 `json:"st" yaml:"st"`
	SOS    float64 `json:"sos" yaml:"sos"`
	LPS    float64 `json:"lps" yaml:"lps"`
	UTAD   float64 `json:"utad" yaml:"utad"`
}

// Default returns the configuration used when no file or overrides are given
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		ReportDir: "reports",
		Limits: LimitsConfig{
			PerTradeMaxPct: 2.0,
			CampaignMaxPct: 5.0,
			HeatCapPct:     15.0,
			DefaultRiskPct: 1.0,
		},
		Correlation: CorrelationConfig{
			MaxSectorPct:          6.0,
			MaxAssetClassPct:      15.0,
			MaxGeographyPct:       20.0,
			MaxCampaignsPerSector: 3,
			Enforcement:           string(wyckoff.EnforcementStrict),
		},
		RMultiples: RMultipleConfig{
			Spring: 3.0,
			ST:     2.5,
			SOS:    2.0,
			LPS:    2.5,
			UTAD:   3.0,
		},
	}
}

// Load builds the effective configuration. The file is optional; environment
// variables override file values, and a named profile replaces the numeric
// limit blocks last. Bare file names resolve against the configs/ directory.
func Load(configFile string) (*Config, error) {
	config := Default()

	if configFile != "" {
		if !strings.ContainsAny(configFile, "/\\") {
			configFile = filepath.Join("configs", configFile)
		}
		if !strings.HasSuffix(configFile, ".json") {
			configFile += ".json"
		}

		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()

	if config.Profile != "" {
		if err := config.ApplyProfile(config.Profile); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// applyEnv overrides configuration fields from RISK_* environment variables
func (c *Config) applyEnv() {
	c.Profile = getEnv("RISK_PROFILE", c.Profile)
	c.ProfilesFile = getEnv("RISK_PROFILES_FILE", c.ProfilesFile)
	c.LogLevel = getEnv("RISK_LOG_LEVEL", c.LogLevel)
	c.LogJSON = getEnvBool("RISK_LOG_JSON", c.LogJSON)
	c.LogFile = getEnv("RISK_LOG_FILE", c.LogFile)
	c.MetricsAddr = getEnv("RISK_METRICS_ADDR", c.MetricsAddr)
	c.AuditFile = getEnv("RISK_AUDIT_FILE", c.AuditFile)
	c.ReportDir = getEnv("RISK_REPORT_DIR", c.ReportDir)
}

// Validate checks the assembled configuration against the domain rules
func (c *Config) Validate() error {
	if err := c.ToLimits().WithDefaults().Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if err := c.ToCorrelation().WithDefaults().Validate(); err != nil {
		return fmt.Errorf("correlation: %w", err)
	}
	if err := c.ToRMultiples().Validate(); err != nil {
		return fmt.Errorf("r_multiples: %w", err)
	}
	return nil
}

// ToLimits converts the limit block to the engine's decimal representation
func (c *Config) ToLimits() risk.Limits {
	return risk.Limits{
		PerTradeMaxPct: decimal.NewFromFloat(c.Limits.PerTradeMaxPct),
		CampaignMaxPct: decimal.NewFromFloat(c.Limits.CampaignMaxPct),
		HeatCapPct:     decimal.NewFromFloat(c.Limits.HeatCapPct),
		DefaultRiskPct: decimal.NewFromFloat(c.Limits.DefaultRiskPct),
	}
}

// ToCorrelation converts the correlation block to the domain representation
func (c *Config) ToCorrelation() wyckoff.CorrelationConfig {
	return wyckoff.CorrelationConfig{
		MaxSectorPct:          decimal.NewFromFloat(c.Correlation.MaxSectorPct),
		MaxAssetClassPct:      decimal.NewFromFloat(c.Correlation.MaxAssetClassPct),
		MaxGeographyPct:       decimal.NewFromFloat(c.Correlation.MaxGeographyPct),
		MaxCampaignsPerSector: c.Correlation.MaxCampaignsPerSector,
		Enforcement:           wyckoff.EnforcementMode(c.Correlation.Enforcement),
	}
}

// ToRMultiples converts the R-multiple floors to the domain representation
func (c *Config) ToRMultiples() wyckoff.RMultipleConfig {
	return wyckoff.RMultipleConfig{
		Spring: decimal.NewFromFloat(c.RMultiples.Spring),
		ST:     decimal.NewFromFloat(c.RMultiples.ST),
		SOS:    decimal.NewFromFloat(c.RMultiples.SOS),
		LPS:    decimal.NewFromFloat(c.RMultiples.LPS),
		UTAD:   decimal.NewFromFloat(c.RMultiples.UTAD),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
