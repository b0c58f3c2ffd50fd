package stats

import (
	"time"

	"github.com/rustyeddy/quantsim/portfolio"
)

// DrawdownPeriod is one excursion below the running equity peak. A period
// starts when equity first falls under the peak and ends at recovery to a
// new peak; Recovery stays zero when the series ends still under water.
type DrawdownPeriod struct {
	Start    time.Time
	Trough   time.Time
	Recovery time.Time
	Depth    float64 // fraction <= 0 at the trough
}

// Recovered reports whether the period ended with equity back at its peak.
func (p DrawdownPeriod) Recovered() bool { return !p.Recovery.IsZero() }

// DrawdownPeriods decomposes an equity curve into its ordered drawdown
// periods.
func DrawdownPeriods(curve []portfolio.EquityPoint) []DrawdownPeriod {
	if len(curve) == 0 {
		return nil
	}

	var periods []DrawdownPeriod
	peak := curve[0].Equity
	inDrawdown := false
	var cur DrawdownPeriod

	for _, p := range curve {
		switch {
		case p.Equity >= peak:
			if inDrawdown {
				cur.Recovery = p.Time
				periods = append(periods, cur)
				inDrawdown = false
			}
			peak = p.Equity
		default:
			depth := 0.0
			if peak > 0 {
				depth = (p.Equity - peak) / peak
			}
			if !inDrawdown {
				inDrawdown = true
				cur = DrawdownPeriod{Start: p.Time, Trough: p.Time, Depth: depth}
			} else if depth < cur.Depth {
				cur.Depth = depth
				cur.Trough = p.Time
			}
		}
	}

	if inDrawdown {
		periods = append(periods, cur) // unrecovered at end of series
	}
	return periods
}
