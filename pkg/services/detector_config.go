package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DetectorConfig tunes the pattern detector. Every rule can be switched off
// individually; thresholds default to the values in DefaultDetectorConfig.
type DetectorConfig struct {
	NearThreshold struct {
		Enabled bool `yaml:"enabled"`
		// Margin below a legal ceiling, as a percentage of the ceiling,
		// inside which a contract value is flagged.
		SuspiciousMarginPct float64 `yaml:"suspicious_margin_pct"`
		// Tighter margin that escalates the finding to high severity.
		HighMarginPct float64 `yaml:"high_margin_pct"`
	} `yaml:"near_threshold"`

	Splitting struct {
		Enabled      bool `yaml:"enabled"`
		WindowDays   int  `yaml:"window_days"`
		MinContracts int  `yaml:"min_contracts"`
	} `yaml:"splitting"`

	RepeatedPair struct {
		Enabled      bool `yaml:"enabled"`
		MinContracts int  `yaml:"min_contracts"`
	} `yaml:"repeated_pair"`

	TemporalCluster struct {
		Enabled      bool `yaml:"enabled"`
		WindowDays   int  `yaml:"window_days"`
		MinContracts int  `yaml:"min_contracts"`
	} `yaml:"temporal_cluster"`

	EngineeredValue struct {
		Enabled bool      `yaml:"enabled"`
		Values  []float64 `yaml:"values"`
	} `yaml:"engineered_value"`

	ProcedureMismatch struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"procedure_mismatch"`

	SuspiciousTiming struct {
		Enabled bool `yaml:"enabled"`
		// Month-day pairs ("01-01") treated as public holidays.
		HolidayMonthDays []string `yaml:"holiday_month_days"`
	} `yaml:"suspicious_timing"`
}

// DefaultDetectorConfig returns the detector tuning used when no config file
// is provided.
func DefaultDetectorConfig() DetectorConfig {
	var cfg DetectorConfig

	cfg.NearThreshold.Enabled = true
	cfg.NearThreshold.SuspiciousMarginPct = 5
	cfg.NearThreshold.HighMarginPct = 1

	cfg.Splitting.Enabled = true
	cfg.Splitting.WindowDays = 365
	cfg.Splitting.MinContracts = 3

	cfg.RepeatedPair.Enabled = true
	cfg.RepeatedPair.MinContracts = 5

	cfg.TemporalCluster.Enabled = true
	cfg.TemporalCluster.WindowDays = 30
	cfg.TemporalCluster.MinContracts = 10

	cfg.EngineeredValue.Enabled = true
	cfg.EngineeredValue.Values = []float64{
		74_900, 74_950, 74_990, 74_999,
		149_900, 149_950, 149_990, 149_999,
		213_900, 213_950, 213_990, 213_999,
	}

	cfg.ProcedureMismatch.Enabled = true

	cfg.SuspiciousTiming.Enabled = true
	cfg.SuspiciousTiming.HolidayMonthDays = []string{
		"01-01", "04-25", "05-01", "06-10", "08-15",
		"10-05", "11-01", "12-01", "12-08", "12-25",
	}

	return cfg
}

// LoadDetectorConfig reads a YAML detector config, layered over the defaults.
// An empty path returns the defaults unchanged.
func LoadDetectorConfig(path string) (DetectorConfig, error) {
	cfg := DefaultDetectorConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read detector config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse detector config: %w", err)
	}
	return cfg, nil
}
