package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a named bundle of limit overrides. A nil block keeps the base
// configuration; a present block replaces that block wholesale.
type Profile struct {
	Limits      *LimitsConfig      `yaml:"limits" json:"limits,omitempty"`
	Correlation *CorrelationConfig `yaml:"correlation" json:"correlation,omitempty"`
	RMultiples  *RMultipleConfig   `yaml:"r_multiples" json:"r_multiples,omitempty"`
}

// BuiltinProfiles returns the profiles shipped with the engine. The moderate
// profile mirrors the engine defaults so switching to it is a no-op.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		"conservative": {
			Limits: &LimitsConfig{
				PerTradeMaxPct: 1.0,
				CampaignMaxPct: 3.0,
				HeatCapPct:     10.0,
				DefaultRiskPct: 0.5,
			},
			Correlation: &CorrelationConfig{
				MaxSectorPct:          4.0,
				MaxAssetClassPct:      10.0,
				MaxGeographyPct:       15.0,
				MaxCampaignsPerSector: 2,
				Enforcement:           "strict",
			},
			RMultiples: &RMultipleConfig{
				Spring: 3.5,
				ST:     3.0,
				SOS:    2.5,
				LPS:    3.0,
				UTAD:   3.5,
			},
		},
		"moderate": {
			Limits: &LimitsConfig{
				PerTradeMaxPct: 2.0,
				CampaignMaxPct: 5.0,
				HeatCapPct:     15.0,
				DefaultRiskPct: 1.0,
			},
			Correlation: &CorrelationConfig{
				MaxSectorPct:          6.0,
				MaxAssetClassPct:      15.0,
				MaxGeographyPct:       20.0,
				MaxCampaignsPerSector: 3,
				Enforcement:           "strict",
			},
			RMultiples: &RMultipleConfig{
				Spring: 3.0,
				ST:     2.5,
				SOS:    2.0,
				LPS:    2.5,
				UTAD:   3.0,
			},
		},
		"aggressive": {
			Limits: &LimitsConfig{
				PerTradeMaxPct: 3.0,
				CampaignMaxPct: 8.0,
				HeatCapPct:     15.0,
				DefaultRiskPct: 1.5,
			},
			Correlation: &CorrelationConfig{
				MaxSectorPct:          8.0,
				MaxAssetClassPct:      20.0,
				MaxGeographyPct:       25.0,
				MaxCampaignsPerSector: 4,
				Enforcement:           "permissive",
			},
			RMultiples: &RMultipleConfig{
				Spring: 3.0,
				ST:     2.5,
				SOS:    2.0,
				LPS:    2.5,
				UTAD:   3.0,
			},
		},
	}
}

// LoadProfiles reads custom profiles from a YAML file. File profiles are
// merged over the builtin set and shadow builtins with the same name.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var fileProfiles map[string]Profile
	if err := yaml.Unmarshal(data, &fileProfiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	profiles := BuiltinProfiles()
	for name, profile := range fileProfiles {
		profiles[name] = profile
	}
	return profiles, nil
}

// ApplyProfile replaces the numeric limit blocks with those of the named
// profile. Profiles come from ProfilesFile when set, otherwise the builtins.
func (c *Config) ApplyProfile(name string) error {
	profiles := BuiltinProfiles()
	if c.ProfilesFile != "" {
		loaded, err := LoadProfiles(c.ProfilesFile)
		if err != nil {
			return err
		}
		profiles = loaded
	}

	profile, ok := profiles[name]
	if !ok {
		return fmt.Errorf("unknown risk profile: %s", name)
	}

	if profile.Limits != nil {
		c.Limits = *profile.Limits
	}
	if profile.Correlation != nil {
		c.Correlation = *profile.Correlation
	}
	if profile.RMultiples != nil {
		c.RMultiples = *profile.RMultiples
	}
	c.Profile = name
	return nil
}
