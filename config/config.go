// Package config loads and validates the full simulation configuration.
// Every threshold lives here and is threaded explicitly into constructors;
// nothing in the repository reads process-wide mutable state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	RiskZone   RiskZoneConfig   `json:"risk_zone" yaml:"risk_zone"`
	KillSwitch KillSwitchConfig `json:"kill_switch" yaml:"kill_switch"`
	Scenario   ScenarioConfig   `json:"scenario" yaml:"scenario"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// EngineConfig drives the simulation loop.
type EngineConfig struct {
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	PositionFraction float64 `json:"position_fraction" yaml:"position_fraction"`
	// StrengthScaled scales the position fraction by signal strength, so a
	// conviction-50 signal commits half of the configured fraction.
	StrengthScaled bool    `json:"strength_scaled" yaml:"strength_scaled"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	// MaxDrawdownLimit is intentionally unset-able: 0 disables the halt.
	// Source configurations disagree on the "right" threshold (10-25%), so
	// it is always explicit, never inferred.
	MaxDrawdownLimit float64 `json:"max_drawdown_limit" yaml:"max_drawdown_limit"`
	CloseAtEnd       bool    `json:"close_at_end" yaml:"close_at_end"`
	BarsPerYear      float64 `json:"bars_per_year" yaml:"bars_per_year"`
}

// RiskZoneConfig selects how stops and targets are planned at entry.
type RiskZoneConfig struct {
	StopMethod  string  `json:"stop_method" yaml:"stop_method"` // "none", "atr", "fixed"
	TakeMethod  string  `json:"take_method" yaml:"take_method"` // "none", "atr", "fixed", "fibonacci"
	ATRPeriod   int     `json:"atr_period" yaml:"atr_period"`
	ATRMultiple float64 `json:"atr_multiple" yaml:"atr_multiple"`
	FixedPct    float64 `json:"fixed_pct" yaml:"fixed_pct"`
}

// KillSwitchConfig configures the latched monitor.
type KillSwitchConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	SpreadMultiple float64 `json:"spread_multiple" yaml:"spread_multiple"`
	VolumeLookback int     `json:"volume_lookback" yaml:"volume_lookback"`
}

// ScenarioConfig configures stress generation.
type ScenarioConfig struct {
	Seed             int64   `json:"seed" yaml:"seed"`
	VolFactor        float64 `json:"vol_factor" yaml:"vol_factor"`
	CrashDepth       float64 `json:"crash_depth" yaml:"crash_depth"`
	CrashIndex       int     `json:"crash_index" yaml:"crash_index"`
	LimitPct         float64 `json:"limit_pct" yaml:"limit_pct"`
	DryUpWindow      int     `json:"dry_up_window" yaml:"dry_up_window"`
	DryUpFloor       float64 `json:"dry_up_floor" yaml:"dry_up_floor"`
	CorrelationBlend float64 `json:"correlation_blend" yaml:"correlation_blend"`
}

// JournalConfig selects where runs are persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile reads YAML or JSON configuration, trying YAML first.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Engine.InitialCapital <= 0 {
		return fmt.Errorf("engine.initial_capital must be positive")
	}
	if c.Engine.PositionFraction <= 0 || c.Engine.PositionFraction > 1 {
		return fmt.Errorf("engine.position_fraction must be in (0, 1]")
	}
	if c.Engine.CommissionRate < 0 {
		return fmt.Errorf("engine.commission_rate must not be negative")
	}
	if c.Engine.MaxDrawdownLimit < 0 || c.Engine.MaxDrawdownLimit >= 1 {
		return fmt.Errorf("engine.max_drawdown_limit must be in [0, 1)")
	}
	if c.Engine.BarsPerYear <= 0 {
		return fmt.Errorf("engine.bars_per_year must be positive")
	}

	switch c.RiskZone.StopMethod {
	case "", "none", "atr", "fixed":
	default:
		return fmt.Errorf("risk_zone.stop_method must be none, atr, or fixed")
	}
	switch c.RiskZone.TakeMethod {
	case "", "none", "atr", "fixed", "fibonacci":
	default:
		return fmt.Errorf("risk_zone.take_method must be none, atr, fixed, or fibonacci")
	}

	if c.KillSwitch.Enabled {
		if c.KillSwitch.MaxDrawdown <= 0 || c.KillSwitch.MaxDrawdown >= 1 {
			return fmt.Errorf("kill_switch.max_drawdown must be in (0, 1)")
		}
		if c.KillSwitch.SpreadMultiple <= 1 {
			return fmt.Errorf("kill_switch.spread_multiple must be greater than 1")
		}
		if c.KillSwitch.VolumeLookback <= 0 {
			return fmt.Errorf("kill_switch.volume_lookback must be positive")
		}
	}

	switch c.Journal.Type {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("journal.type must be csv or sqlite")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "" || c.Journal.RunsFile == "") {
		return fmt.Errorf("journal trades_file, equity_file, and runs_file required for csv type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for sqlite type")
	}

	return nil
}

// Default returns a configuration with the documented defaults: $100k
// capital, 10% of equity per position, a 20% drawdown halt, daily bars, and
// the standard kill-switch thresholds.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			InitialCapital:   100_000,
			PositionFraction: 0.10,
			CommissionRate:   0.001,
			MaxDrawdownLimit: 0.20,
			CloseAtEnd:       true,
			BarsPerYear:      252,
		},
		RiskZone: RiskZoneConfig{
			StopMethod:  "atr",
			TakeMethod:  "atr",
			ATRPeriod:   14,
			ATRMultiple: 2,
		},
		KillSwitch: KillSwitchConfig{
			Enabled:        true,
			MaxDrawdown:    0.20,
			SpreadMultiple: 3,
			VolumeLookback: 5,
		},
		Scenario: ScenarioConfig{
			Seed:             1,
			VolFactor:        2.0,
			CrashDepth:       0.15,
			CrashIndex:       -1,
			LimitPct:         0.10,
			DryUpWindow:      20,
			CorrelationBlend: 0.8,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
			RunsFile:   "./runs.csv",
		},
	}
}
