package riskzone

import (
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/portfolio"
)

// StopMethod selects how the protective stop is derived.
type StopMethod int

const (
	StopNone StopMethod = iota
	StopATR             // entry -/+ ATR * multiple
	StopFixedPct        // entry * (1 -/+ pct)
)

// TakeMethod selects how the take-profit tiers are spaced.
type TakeMethod int

const (
	TakeNone TakeMethod = iota
	TakeATR             // 1x / 2x / 3x ATR from entry
	TakeFixed           // +2% / +5% / +10%
	TakeFibonacci       // +3.82% / +6.18% / +16.18%
)

// Levels are the price zones for one position. Takes are ordered nearest
// first; the engine uses Takes[0] as its intrabar target. Zero values mean
// no level.
type Levels struct {
	Stop  float64
	Takes [3]float64
}

// Planner derives Levels from recent bar history. The zero value plans no
// levels at all.
type Planner struct {
	Stop        StopMethod
	Take        TakeMethod
	ATRPeriod   int     // default 14
	ATRMultiple float64 // stop distance in ATRs, default 2
	FixedPct    float64 // fixed stop distance, e.g. 0.05
}

// DefaultPlanner uses a 14-bar ATR with a 2x stop and ATR-spaced targets.
func DefaultPlanner() Planner {
	return Planner{
		Stop:        StopATR,
		Take:        TakeATR,
		ATRPeriod:   14,
		ATRMultiple: 2,
	}
}

// PlanLevels computes stop and take levels for a position entered at entry.
// history is every bar up to and including the entry bar; levels never look
// ahead. When the history is too short for the ATR, the planner degrades to
// no levels rather than failing the entry.
func (p Planner) PlanLevels(history []market.Bar, side portfolio.Side, entry float64) Levels {
	var lv Levels
	dir := float64(side)

	var atr float64
	if p.Stop == StopATR || p.Take == TakeATR {
		period := p.ATRPeriod
		if period <= 0 {
			period = 14
		}
		v, err := ATR(history, period)
		if err != nil {
			atr = 0
		} else {
			atr = v
		}
	}

	switch p.Stop {
	case StopATR:
		mult := p.ATRMultiple
		if mult <= 0 {
			mult = 2
		}
		if atr > 0 {
			lv.Stop = entry - dir*atr*mult
		}
	case StopFixedPct:
		if p.FixedPct > 0 {
			lv.Stop = entry * (1 - dir*p.FixedPct)
		}
	}

	switch p.Take {
	case TakeATR:
		if atr > 0 {
			for i := range lv.Takes {
				lv.Takes[i] = entry + dir*atr*float64(i+1)
			}
		}
	case TakeFixed:
		for i, pct := range [3]float64{0.02, 0.05, 0.10} {
			lv.Takes[i] = entry * (1 + dir*pct)
		}
	case TakeFibonacci:
		for i, pct := range [3]float64{0.0382, 0.0618, 0.1618} {
			lv.Takes[i] = entry * (1 + dir*pct)
		}
	}

	return lv
}

// RewardRisk is the take-profit reward over the stop-loss risk for an
// entry. Zero when the stop risk is zero or levels are unset.
func RewardRisk(entry, stop, take float64) float64 {
	risk := entry - stop
	if risk < 0 {
		risk = -risk
	}
	reward := take - entry
	if reward < 0 {
		reward = -reward
	}
	if risk == 0 || stop == 0 || take == 0 {
		return 0
	}
	return reward / risk
}
