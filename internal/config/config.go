package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smartcity/transit-optimizer/internal/analysis"
)

// Config holds the runtime configuration of the service
type Config struct {
	DatabaseURL string
	SQLitePath  string
	Port        string
	Env         string
	LogLevel    string
	PolicyFile  string

	// WindowDays is the default look-back for stored-ridership analyses
	WindowDays int

	Analysis analysis.Settings
}

// Load reads .env (if present), the optional policy file and environment overrides.
// Precedence: environment > policy file > defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("GO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PolicyFile:  getEnv("POLICY_FILE", ""),
		Analysis:    analysis.DefaultSettings(),
	}

	var err error
	if cfg.WindowDays, err = getEnvInt("ANALYSIS_WINDOW_DAYS", 30); err != nil {
		return nil, err
	}

	if cfg.PolicyFile != "" {
		if cfg.Analysis, err = LoadPolicyFile(cfg.PolicyFile, cfg.Analysis); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(&cfg.Analysis); err != nil {
		return nil, err
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadPolicyFile overlays the YAML policy at path onto base.
// Keys missing from the file keep their value from base.
func LoadPolicyFile(path string, base analysis.Settings) (analysis.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: failed to read policy file: %w", err)
	}

	settings := base
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return base, fmt.Errorf("config: failed to parse policy file: %w", err)
	}
	return settings, nil
}

func applyEnvOverrides(s *analysis.Settings) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"CRITICAL_THRESHOLD", &s.CriticalThreshold},
		{"OVERLOAD_CUTOFF", &s.OverloadCutoff},
		{"UNDERUSE_CUTOFF", &s.UnderuseCutoff},
	}
	for _, f := range floats {
		v, err := getEnvFloat(f.key, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"FREQUENCY_STEP_MIN", &s.StepMin},
		{"MIN_FREQUENCY_MIN", &s.MinFrequencyMin},
		{"MAX_FREQUENCY_MIN", &s.MaxFrequencyMin},
		{"PEAK_TOP_K", &s.PeakTopK},
		{"ANALYSIS_WORKERS", &s.Workers},
		{"PARALLEL_THRESHOLD", &s.ParallelThreshold},
	}
	for _, i := range ints {
		v, err := getEnvInt(i.key, *i.dst)
		if err != nil {
			return err
		}
		*i.dst = v
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a number: %w", key, err)
	}
	return v, nil
}
