package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyckoffd/risk-engine/pkg/risk"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// TestDefaultMatchesEngineDefaults verifies the zero-config path mirrors the
// engine's builtin limits exactly.
func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	limits := cfg.ToLimits()
	assert.True(t, limits.PerTradeMaxPct.Equal(risk.DefaultPerTradeMaxPct))
	assert.True(t, limits.CampaignMaxPct.Equal(risk.DefaultCampaignMaxPct))
	assert.True(t, limits.HeatCapPct.Equal(risk.DefaultHeatCapPct))
	assert.True(t, limits.DefaultRiskPct.Equal(risk.DefaultRiskPct))

	corr := cfg.ToCorrelation()
	assert.True(t, corr.MaxSectorPct.Equal(wyckoff.DefaultMaxSectorPct))
	assert.True(t, corr.MaxAssetClassPct.Equal(wyckoff.DefaultMaxAssetClassPct))
	assert.True(t, corr.MaxGeographyPct.Equal(wyckoff.DefaultMaxGeographyPct))
	assert.Equal(t, wyckoff.DefaultMaxCampaignsPerSector, corr.MaxCampaignsPerSector)
	assert.Equal(t, wyckoff.EnforcementStrict, corr.Enforcement)

	floors := cfg.ToRMultiples()
	assert.True(t, floors.FloorFor(wyckoff.PatternSpring).Equal(wyckoff.DefaultSpringFloor))
	assert.True(t, floors.FloorFor(wyckoff.PatternSOS).Equal(wyckoff.DefaultSosFloor))
}

// TestLoadMergesFileOverDefaults loads a partial JSON file and checks that
// absent fields keep their default values.
func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	payload := `{
		"log_level": "debug",
		"audit_file": "audit/trail.jsonl",
		"limits": {"per_trade_max_pct": 1.5, "default_risk_pct": 0.75}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "audit/trail.jsonl", cfg.AuditFile)
	assert.Equal(t, 1.5, cfg.Limits.PerTradeMaxPct)
	assert.Equal(t, 0.75, cfg.Limits.DefaultRiskPct)
	assert.Equal(t, 5.0, cfg.Limits.CampaignMaxPct)
	assert.Equal(t, 15.0, cfg.Limits.HeatCapPct)
	assert.Equal(t, 6.0, cfg.Correlation.MaxSectorPct)
}

// TestLoadMissingFile surfaces a wrapped read error for unreadable paths
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// TestEnvOverridesFileAndDefaults checks the RISK_* variables win over both
// defaults and file values.
func TestEnvOverridesFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "warn"}`), 0644))

	t.Setenv("RISK_LOG_LEVEL", "trace")
	t.Setenv("RISK_LOG_JSON", "true")
	t.Setenv("RISK_LOG_FILE", "logs/engine.jsonl")
	t.Setenv("RISK_REPORT_DIR", "out/reports")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "logs/engine.jsonl", cfg.LogFile)
	assert.Equal(t, "out/reports", cfg.ReportDir)
}

// TestProfileFromEnv applies the profile named by RISK_PROFILE during Load
func TestProfileFromEnv(t *testing.T) {
	t.Setenv("RISK_PROFILE", "conservative")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "conservative", cfg.Profile)
	assert.Equal(t, 1.0, cfg.Limits.PerTradeMaxPct)
	assert.Equal(t, 3.0, cfg.Limits.CampaignMaxPct)
	assert.Equal(t, 2, cfg.Correlation.MaxCampaignsPerSector)
	assert.Equal(t, 3.5, cfg.RMultiples.Spring)
}

// TestApplyBuiltinProfiles exercises each shipped profile and confirms the
// result still passes validation.
func TestApplyBuiltinProfiles(t *testing.T) {
	for name := range BuiltinProfiles() {
		cfg := Default()
		require.NoError(t, cfg.ApplyProfile(name), "profile %s", name)
		require.NoError(t, cfg.Validate(), "profile %s", name)
		assert.Equal(t, name, cfg.Profile)
	}

	aggressive := Default()
	require.NoError(t, aggressive.ApplyProfile("aggressive"))
	assert.Equal(t, 3.0, aggressive.Limits.PerTradeMaxPct)
	assert.Equal(t, string(wyckoff.EnforcementPermissive), aggressive.Correlation.Enforcement)
}

// TestApplyUnknownProfile rejects profile names that are not defined
func TestApplyUnknownProfile(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyProfile("reckless")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown risk profile")
}

// TestProfilesFileMergesOverBuiltins loads custom YAML profiles, applies one
// that only overrides the limit block, and checks builtins stay reachable.
func TestProfilesFileMergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	payload := `
desk:
  limits:
    per_trade_max_pct: 0.75
    campaign_max_pct: 2.5
    heat_cap_pct: 8
    default_risk_pct: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	cfg := Default()
	cfg.ProfilesFile = path
	require.NoError(t, cfg.ApplyProfile("desk"))

	assert.Equal(t, 0.75, cfg.Limits.PerTradeMaxPct)
	assert.Equal(t, 8.0, cfg.Limits.HeatCapPct)
	// Correlation block was nil in the profile, the base config survives
	assert.Equal(t, 6.0, cfg.Correlation.MaxSectorPct)

	builtin := Default()
	builtin.ProfilesFile = path
	require.NoError(t, builtin.ApplyProfile("moderate"))
	assert.Equal(t, 2.0, builtin.Limits.PerTradeMaxPct)
}

// TestLoadRejectsInvalidConfig surfaces domain validation failures with a
// config validation prefix.
func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	payload := `{"limits": {"default_risk_pct": 3.0}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
