package config

import (
	"fmt"

	"github.com/rustyeddy/quantsim/journal"
	"github.com/rustyeddy/quantsim/killswitch"
	"github.com/rustyeddy/quantsim/riskzone"
	"github.com/rustyeddy/quantsim/scenario"
	"github.com/rustyeddy/quantsim/sim"
)

// SimConfig assembles the engine configuration, including the sizing
// policy, planner, and kill-switch thresholds.
func (c *Config) SimConfig() sim.Config {
	sizing := sim.FractionalSizing(c.Engine.PositionFraction)
	if c.Engine.StrengthScaled {
		sizing = sim.StrengthScaledSizing(c.Engine.PositionFraction)
	}

	cfg := sim.Config{
		InitialCapital:   c.Engine.InitialCapital,
		MaxDrawdownLimit: c.Engine.MaxDrawdownLimit,
		CommissionRate:   c.Engine.CommissionRate,
		CloseAtEnd:       c.Engine.CloseAtEnd,
		Sizing:           sizing,
	}

	if p := c.Planner(); p.Stop != riskzone.StopNone || p.Take != riskzone.TakeNone {
		cfg.Planner = p
	}
	if c.KillSwitch.Enabled {
		th := c.Thresholds()
		cfg.KillSwitch = &th
	}
	return cfg
}

// Planner translates the risk-zone section into a level planner.
func (c *Config) Planner() riskzone.Planner {
	p := riskzone.Planner{
		ATRPeriod:   c.RiskZone.ATRPeriod,
		ATRMultiple: c.RiskZone.ATRMultiple,
		FixedPct:    c.RiskZone.FixedPct,
	}
	switch c.RiskZone.StopMethod {
	case "atr":
		p.Stop = riskzone.StopATR
	case "fixed":
		p.Stop = riskzone.StopFixedPct
	}
	switch c.RiskZone.TakeMethod {
	case "atr":
		p.Take = riskzone.TakeATR
	case "fixed":
		p.Take = riskzone.TakeFixed
	case "fibonacci":
		p.Take = riskzone.TakeFibonacci
	}
	return p
}

// Thresholds translates the kill-switch section.
func (c *Config) Thresholds() killswitch.Thresholds {
	return killswitch.Thresholds{
		MaxDrawdown:    c.KillSwitch.MaxDrawdown,
		SpreadMultiple: c.KillSwitch.SpreadMultiple,
		VolumeLookback: c.KillSwitch.VolumeLookback,
	}
}

// ScenarioParams translates the scenario section.
func (c *Config) ScenarioParams() scenario.Params {
	return scenario.Params{
		VolFactor:        c.Scenario.VolFactor,
		CrashDepth:       c.Scenario.CrashDepth,
		CrashIndex:       c.Scenario.CrashIndex,
		LimitPct:         c.Scenario.LimitPct,
		DryUpWindow:      c.Scenario.DryUpWindow,
		DryUpFloor:       c.Scenario.DryUpFloor,
		CorrelationBlend: c.Scenario.CorrelationBlend,
	}
}

// OpenJournal opens the configured journal backend, or nil when journaling
// is disabled.
func (c *Config) OpenJournal() (journal.Journal, error) {
	switch c.Journal.Type {
	case "":
		return nil, nil
	case "csv":
		return journal.NewCSV(c.Journal.TradesFile, c.Journal.EquityFile, c.Journal.RunsFile)
	case "sqlite":
		return journal.NewSQLite(c.Journal.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Journal.Type)
}
