package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"schedly/src-server/model"

	"gopkg.in/yaml.v3"
)

// ScheduleConfig is the optional YAML file named by SCHEDULE_CONFIG. Zero
// or missing values keep the built-in limits.
type ScheduleConfig struct {
	MaxOccurrences       int    `yaml:"max_occurrences"`
	MaxSpanDays          int    `yaml:"max_span_days"`
	ConflictReportCap    int    `yaml:"conflict_report_cap"`
	SuggestMaxIterations int    `yaml:"suggest_max_iterations"`
	SuggestHorizon       string `yaml:"suggest_horizon"`
}

// Limits lays the file's values over model.DefaultLimits.
func (c ScheduleConfig) Limits() (model.Limits, error) {
	l := model.DefaultLimits
	if c.MaxOccurrences > 0 {
		l.Expansion.MaxOccurrences = c.MaxOccurrences
	}
	if c.MaxSpanDays > 0 {
		l.Expansion.MaxSpanDays = c.MaxSpanDays
	}
	if c.ConflictReportCap > 0 {
		l.ReportCap = c.ConflictReportCap
	}
	if c.SuggestMaxIterations > 0 {
		l.Slot.MaxIterations = c.SuggestMaxIterations
	}
	if c.SuggestHorizon != "" {
		horizon, err := time.ParseDuration(c.SuggestHorizon)
		if err != nil || horizon <= 0 {
			return model.Limits{}, fmt.Errorf("invalid suggest_horizon %q", c.SuggestHorizon)
		}
		l.Slot.Horizon = horizon
	}
	return l, nil
}

// LoadLimits reads the schedule config at path. A blank path or a missing
// file gives the defaults.
func LoadLimits(path string) (model.Limits, error) {
	if path == "" {
		return model.DefaultLimits, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("schedule config not found, using defaults", "path", path)
			return model.DefaultLimits, nil
		}
		return model.Limits{}, fmt.Errorf("LoadLimits: %w", err)
	}

	var cfg ScheduleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Limits{}, fmt.Errorf("LoadLimits: %w", err)
	}
	limits, err := cfg.Limits()
	if err != nil {
		return model.Limits{}, fmt.Errorf("LoadLimits: %w", err)
	}
	slog.Debug("schedule config loaded", "path", path, "limits", limits)
	return limits, nil
}
