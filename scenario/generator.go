package scenario

import (
	"fmt"
	"math/rand"

	"github.com/rustyeddy/quantsim/market"
)

// Generator produces stress variants of a baseline series. It is safe for
// concurrent use: every Generate call builds its own seeded random source,
// so repeated calls with the same inputs yield identical output.
type Generator struct {
	params Params
	seed   int64
}

func NewGenerator(params Params, seed int64) *Generator {
	return &Generator{params: params.withDefaults(), seed: seed}
}

func (g *Generator) Params() Params { return g.params }

// Generate transforms a single series. CorrelationBreakdown needs at least
// two series and fails here with ErrUnsupportedScenario; use GenerateSet.
func (g *Generator) Generate(bars []market.Bar, kind Kind) ([]market.Bar, error) {
	if err := market.ValidateSeries(bars); err != nil {
		return nil, err
	}

	switch kind {
	case Baseline:
		return cloneBars(bars), nil
	case VolatilityShock:
		return g.volatilityShock(bars), nil
	case GapCrash:
		return g.gapCrash(bars, g.seed), nil
	case LimitMove:
		return g.limitMove(bars), nil
	case LiquidityDryUp:
		return g.liquidityDryUp(bars), nil
	case CorrelationBreakdown:
		return nil, fmt.Errorf("%w: correlation breakdown needs at least two series", ErrUnsupportedScenario)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedScenario, kind)
}

// GenerateSet transforms several series together. All series must share a
// length; per-series randomness is derived from the generator seed plus the
// series index, so output stays deterministic.
func (g *Generator) GenerateSet(set [][]market.Bar, kind Kind) ([][]market.Bar, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty series set", market.ErrInvalidInput)
	}
	for i, bars := range set {
		if err := market.ValidateSeries(bars); err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		if len(bars) != len(set[0]) {
			return nil, fmt.Errorf("%w: series lengths differ (%d vs %d)", market.ErrInvalidInput, len(set[0]), len(bars))
		}
	}

	if kind == CorrelationBreakdown {
		if len(set) < 2 {
			return nil, fmt.Errorf("%w: correlation breakdown needs at least two series, got %d", ErrUnsupportedScenario, len(set))
		}
		return g.correlationBreakdown(set), nil
	}

	out := make([][]market.Bar, len(set))
	for i, bars := range set {
		switch kind {
		case GapCrash:
			out[i] = g.gapCrash(bars, g.seed+int64(i)*7919)
		default:
			v, err := g.Generate(bars, kind)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
	}
	return out, nil
}

// volatilityShock scales every close-to-close return by VolFactor. The sign
// sequence is untouched; the path just moves further each bar.
func (g *Generator) volatilityShock(bars []market.Bar) []market.Bar {
	out := cloneBars(bars)
	rets := market.Returns(bars)
	px := bars[0].Close
	for i, r := range rets {
		px *= 1 + g.params.VolFactor*r
		scaleBar(&out[i+1], px)
	}
	return out
}

// gapCrash inserts one discontinuous downward jump of CrashDepth at the
// configured index (or a seeded one in the middle half of the series) and
// resumes the original trajectory from the new level.
func (g *Generator) gapCrash(bars []market.Bar, seed int64) []market.Bar {
	out := cloneBars(bars)

	idx := g.params.CrashIndex
	if idx < 0 || idx >= len(bars) {
		if len(bars) < 4 {
			idx = len(bars) / 2
		} else {
			rng := rand.New(rand.NewSource(seed))
			quarter := len(bars) / 4
			idx = quarter + rng.Intn(len(bars)-2*quarter)
		}
	}

	factor := 1 - g.params.CrashDepth
	for i := idx; i < len(out); i++ {
		out[i].Open *= factor
		out[i].High *= factor
		out[i].Low *= factor
		out[i].Close *= factor
	}
	return out
}

// limitMove clamps per-bar returns to ±LimitPct, simulating a circuit
// breaker. Clipped magnitude is discarded. Opens re-anchor to the prior
// close and intrabar extremes are held inside the limit band.
func (g *Generator) limitMove(bars []market.Bar) []market.Bar {
	out := cloneBars(bars)
	limit := g.params.LimitPct

	prevNew := bars[0].Close
	prevOrig := bars[0].Close
	for i := 1; i < len(bars); i++ {
		r := 0.0
		if prevOrig != 0 {
			r = (bars[i].Close - prevOrig) / prevOrig
		}
		if r > limit {
			r = limit
		} else if r < -limit {
			r = -limit
		}

		o := prevNew
		c := prevNew * (1 + r)

		ratio := 1.0
		if bars[i].Close != 0 {
			ratio = c / bars[i].Close
		}
		h := bars[i].High * ratio
		l := bars[i].Low * ratio
		if ceil := prevNew * (1 + limit); h > ceil {
			h = ceil
		}
		if floor := prevNew * (1 - limit); l < floor {
			l = floor
		}
		h = max3(h, o, c)
		l = min3(l, o, c)

		out[i].Open, out[i].High, out[i].Low, out[i].Close = o, h, l, c

		prevOrig = bars[i].Close
		prevNew = c
	}
	return out
}

// liquidityDryUp linearly decays volume over the trailing DryUpWindow bars
// down to DryUpFloor of the original. Prices are untouched.
func (g *Generator) liquidityDryUp(bars []market.Bar) []market.Bar {
	out := cloneBars(bars)
	window := g.params.DryUpWindow
	if window > len(out) {
		window = len(out)
	}
	start := len(out) - window
	for j := 0; j < window; j++ {
		factor := 1 - (1-g.params.DryUpFloor)*float64(j+1)/float64(window)
		out[start+j].Volume *= factor
	}
	return out
}

// correlationBreakdown blends each series' per-bar return toward the
// cross-sectional mean return, driving pairwise correlation toward one.
func (g *Generator) correlationBreakdown(set [][]market.Bar) [][]market.Bar {
	n := len(set[0])
	w := g.params.CorrelationBlend

	rets := make([][]float64, len(set))
	for s, bars := range set {
		rets[s] = market.Returns(bars)
	}

	means := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		sum := 0.0
		for s := range rets {
			sum += rets[s][i]
		}
		means[i] = sum / float64(len(rets))
	}

	out := make([][]market.Bar, len(set))
	for s, bars := range set {
		out[s] = cloneBars(bars)
		px := bars[0].Close
		for i := 0; i < n-1; i++ {
			blended := (1-w)*rets[s][i] + w*means[i]
			px *= 1 + blended
			scaleBar(&out[s][i+1], px)
		}
	}
	return out
}

func cloneBars(bars []market.Bar) []market.Bar {
	out := make([]market.Bar, len(bars))
	copy(out, bars)
	return out
}

// scaleBar rescales a bar so its close lands on newClose, preserving the
// bar's shape and therefore the OHLC ordering invariant.
func scaleBar(b *market.Bar, newClose float64) {
	if b.Close == 0 {
		return
	}
	ratio := newClose / b.Close
	b.Open *= ratio
	b.High *= ratio
	b.Low *= ratio
	b.Close = newClose
}

func max3(a, b, c float64) float64 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
