package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDetectorConfig(t *testing.T) {
	cfg := DefaultDetectorConfig()

	assert.True(t, cfg.NearThreshold.Enabled)
	assert.Equal(t, 5.0, cfg.NearThreshold.SuspiciousMarginPct)
	assert.Equal(t, 1.0, cfg.NearThreshold.HighMarginPct)
	assert.Equal(t, 365, cfg.Splitting.WindowDays)
	assert.Equal(t, 3, cfg.Splitting.MinContracts)
	assert.Equal(t, 5, cfg.RepeatedPair.MinContracts)
	assert.Equal(t, 30, cfg.TemporalCluster.WindowDays)
	assert.Equal(t, 10, cfg.TemporalCluster.MinContracts)
	assert.Len(t, cfg.EngineeredValue.Values, 12)
	assert.Len(t, cfg.SuspiciousTiming.HolidayMonthDays, 10)
}

func TestLoadDetectorConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadDetectorConfig("")

	require.NoError(t, err)
	assert.Equal(t, DefaultDetectorConfig(), cfg)
}

func TestLoadDetectorConfig_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.yaml")
	content := []byte(`
near_threshold:
  enabled: false
repeated_pair:
  enabled: true
  min_contracts: 8
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadDetectorConfig(path)

	require.NoError(t, err)
	assert.False(t, cfg.NearThreshold.Enabled)
	assert.Equal(t, 8, cfg.RepeatedPair.MinContracts)
	// Untouched sections keep their defaults.
	assert.Equal(t, 365, cfg.Splitting.WindowDays)
}

func TestLoadDetectorConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadDetectorConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
