// Package scenario deterministically transforms a baseline price series
// into stress variants. Given the same seed and parameters, Generate always
// produces the same bars; any randomness comes from the seeded source and
// nowhere else.
package scenario

import (
	"errors"
	"fmt"
)

// ErrUnsupportedScenario is returned when a variant cannot be computed
// under the current configuration, e.g. correlation breakdown on a single
// series.
var ErrUnsupportedScenario = errors.New("unsupported scenario")

// Kind is the closed set of stress variants. The generator switches over it
// exhaustively; adding a variant is a compile-time extension.
type Kind int

const (
	Baseline Kind = iota
	VolatilityShock
	GapCrash
	LimitMove
	LiquidityDryUp
	CorrelationBreakdown
)

// Kinds lists every variant, in order, for sweeps and CLI enumeration.
func Kinds() []Kind {
	return []Kind{Baseline, VolatilityShock, GapCrash, LimitMove, LiquidityDryUp, CorrelationBreakdown}
}

var kindNames = map[Kind]string{
	Baseline:             "baseline",
	VolatilityShock:      "volatility-shock",
	GapCrash:             "gap-crash",
	LimitMove:            "limit-move",
	LiquidityDryUp:       "liquidity-dry-up",
	CorrelationBreakdown: "correlation-breakdown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps the wire spelling back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Baseline, fmt.Errorf("%w: unknown scenario %q", ErrUnsupportedScenario, s)
}

// Params are the numeric knobs for every variant. Zero values fall back to
// the defaults below at generation time.
type Params struct {
	// VolFactor scales each bar's return for VolatilityShock (2 doubles the
	// moves while preserving their signs).
	VolFactor float64

	// CrashDepth is the GapCrash downward jump as a fraction (0.15 = -15%).
	// CrashIndex pins the jump bar; negative means pick one from the seed.
	CrashDepth float64
	CrashIndex int

	// LimitPct clamps per-bar returns for LimitMove. Clipped magnitude is
	// discarded, not redistributed: redistribution would couple bars and
	// make the clamp itself history-dependent.
	LimitPct float64

	// DryUpWindow is how many trailing bars LiquidityDryUp decays volume
	// over; DryUpFloor is the residual volume fraction at the end.
	DryUpWindow int
	DryUpFloor  float64

	// CorrelationBlend in [0,1] pulls every series' per-bar return toward
	// the cross-sectional mean for CorrelationBreakdown.
	CorrelationBlend float64
}

// DefaultParams mirrors the stress-test defaults: doubled volatility, a 15%
// crash at a seeded index, 10% limit moves, volume decaying to zero over 20
// bars, and a 0.8 correlation blend.
func DefaultParams() Params {
	return Params{
		VolFactor:        2.0,
		CrashDepth:       0.15,
		CrashIndex:       -1,
		LimitPct:         0.10,
		DryUpWindow:      20,
		DryUpFloor:       0,
		CorrelationBlend: 0.8,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.VolFactor <= 0 {
		p.VolFactor = d.VolFactor
	}
	if p.CrashDepth <= 0 {
		p.CrashDepth = d.CrashDepth
	}
	if p.LimitPct <= 0 {
		p.LimitPct = d.LimitPct
	}
	if p.DryUpWindow <= 0 {
		p.DryUpWindow = d.DryUpWindow
	}
	if p.DryUpFloor < 0 {
		p.DryUpFloor = 0
	}
	if p.CorrelationBlend <= 0 || p.CorrelationBlend > 1 {
		p.CorrelationBlend = d.CorrelationBlend
	}
	return p
}
