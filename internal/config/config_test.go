package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/analysis"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	t.Setenv("POLICY_FILE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30, cfg.WindowDays)
	assert.Equal(t, 0.75, cfg.Analysis.CriticalThreshold)
	assert.Equal(t, 0.80, cfg.Analysis.OverloadCutoff)
	assert.Equal(t, 0.40, cfg.Analysis.UnderuseCutoff)
	assert.Equal(t, 5, cfg.Analysis.MinFrequencyMin)
	assert.Equal(t, 30, cfg.Analysis.MaxFrequencyMin)
	assert.Equal(t, 3, cfg.Analysis.PeakTopK)
}

func TestLoad_EnvOverridesPolicyFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POLICY_FILE", writePolicy(t, "critical_threshold: 0.9\noverload_cutoff: 0.85\nmax_frequency_min: 40\n"))
	t.Setenv("OVERLOAD_CUTOFF", "0.95")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.9, cfg.Analysis.CriticalThreshold)
	assert.Equal(t, 0.95, cfg.Analysis.OverloadCutoff)
	assert.Equal(t, 40, cfg.Analysis.MaxFrequencyMin)
	assert.Equal(t, 0.40, cfg.Analysis.UnderuseCutoff)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "non-numeric cutoff", env: map[string]string{"UNDERUSE_CUTOFF": "low"}},
		{name: "non-integer step", env: map[string]string{"FREQUENCY_STEP_MIN": "2.5"}},
		{name: "inverted cutoffs", env: map[string]string{"UNDERUSE_CUTOFF": "0.9"}},
		{name: "inverted clamps", env: map[string]string{"MIN_FREQUENCY_MIN": "40"}},
		{name: "missing policy file", env: map[string]string{"POLICY_FILE": "/nonexistent/policy.yml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	base := analysis.DefaultSettings()

	settings, err := LoadPolicyFile(writePolicy(t, "step_min: 10\npeak_top_k: 5\n"), base)
	require.NoError(t, err)
	assert.Equal(t, 10, settings.StepMin)
	assert.Equal(t, 5, settings.PeakTopK)
	assert.Equal(t, base.OverloadCutoff, settings.OverloadCutoff)

	_, err = LoadPolicyFile(writePolicy(t, "step_min: [oops"), base)
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
