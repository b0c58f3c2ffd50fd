package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/quantsim/market"
)

var baseTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// seriesFrom builds a valid bar series walking through the given closes.
func seriesFrom(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	open := closes[0]
	for i, c := range closes {
		h, l := open, c
		if c > h {
			h = c
		}
		if open < l {
			l = open
		}
		bars[i] = market.Bar{
			Time: baseTime.Add(time.Duration(i) * time.Hour),
			Open: open, High: h + 1, Low: l - 1, Close: c,
			Volume: 1000,
		}
		open = c
	}
	return bars
}

func assertValidSeries(t *testing.T, bars []market.Bar) {
	t.Helper()
	assert.NoError(t, market.ValidateSeries(bars))
}

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("meteor-strike")
	assert.ErrorIs(t, err, ErrUnsupportedScenario)
}

func TestBaselineIsIdentity(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 103, 98, 105)
	g := NewGenerator(DefaultParams(), 1)

	out, err := g.Generate(bars, Baseline)
	assert.NoError(t, err)
	assert.Equal(t, bars, out)

	// the output is a copy, not an alias
	out[0].Close = 1
	assert.Equal(t, 100.0, bars[0].Close)
}

func TestVolatilityShock(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 110, 99)
	g := NewGenerator(Params{VolFactor: 2}, 1)

	out, err := g.Generate(bars, VolatilityShock)
	assert.NoError(t, err)

	// +10% becomes +20%, -10% becomes -20%
	assert.InDelta(t, 100, out[0].Close, 1e-9)
	assert.InDelta(t, 120, out[1].Close, 1e-9)
	assert.InDelta(t, 96, out[2].Close, 1e-9)
	assertValidSeries(t, out)
}

func TestGapCrashFixedIndex(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 102, 104, 106, 108)
	g := NewGenerator(Params{CrashDepth: 0.15, CrashIndex: 2}, 1)

	out, err := g.Generate(bars, GapCrash)
	assert.NoError(t, err)

	// untouched before the crash, scaled by 0.85 from the crash bar on
	assert.Equal(t, bars[1], out[1])
	assert.InDelta(t, 104*0.85, out[2].Close, 1e-9)
	assert.InDelta(t, 102*0.85, out[2].Open, 1e-9)
	assert.InDelta(t, 108*0.85, out[4].Close, 1e-9)
	assertValidSeries(t, out)
}

func TestGapCrashSeededIndexIsDeterministic(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 102, 104, 106, 108, 110, 108, 112, 114, 116)
	p := Params{CrashDepth: 0.15, CrashIndex: -1}

	a, err := NewGenerator(p, 42).Generate(bars, GapCrash)
	assert.NoError(t, err)
	b, err := NewGenerator(p, 42).Generate(bars, GapCrash)
	assert.NoError(t, err)
	assert.Equal(t, a, b)

	// the seeded index lands in the middle half of the series
	crashIdx := -1
	for i := range a {
		if a[i].Close != bars[i].Close {
			crashIdx = i
			break
		}
	}
	assert.GreaterOrEqual(t, crashIdx, len(bars)/4)
	assert.Less(t, crashIdx, len(bars)-len(bars)/4)
}

func TestLimitMoveClampsReturns(t *testing.T) {
	t.Parallel()

	// +30% jump clamps to +10%; the flat bar after it stays flat
	bars := seriesFrom(100, 130, 130)
	g := NewGenerator(Params{LimitPct: 0.10}, 1)

	out, err := g.Generate(bars, LimitMove)
	assert.NoError(t, err)

	assert.InDelta(t, 100, out[1].Open, 1e-9)
	assert.InDelta(t, 110, out[1].Close, 1e-9)
	assert.LessOrEqual(t, out[1].High, 110.0+1e-9)
	assert.InDelta(t, 110, out[2].Close, 1e-9)
	assertValidSeries(t, out)
}

func TestLimitMoveDiscardsClippedMagnitude(t *testing.T) {
	t.Parallel()

	// -25% then +4%: the clip leaves the later return untouched
	bars := seriesFrom(100, 75, 78)
	g := NewGenerator(Params{LimitPct: 0.10}, 1)

	out, err := g.Generate(bars, LimitMove)
	assert.NoError(t, err)

	assert.InDelta(t, 90, out[1].Close, 1e-9)
	assert.InDelta(t, 90*1.04, out[2].Close, 1e-9)
	assertValidSeries(t, out)
}

func TestLiquidityDryUp(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 101, 102, 103)
	g := NewGenerator(Params{DryUpWindow: 4, DryUpFloor: 0}, 1)

	out, err := g.Generate(bars, LiquidityDryUp)
	assert.NoError(t, err)

	assert.InDelta(t, 750, out[0].Volume, 1e-9)
	assert.InDelta(t, 500, out[1].Volume, 1e-9)
	assert.InDelta(t, 250, out[2].Volume, 1e-9)
	assert.InDelta(t, 0, out[3].Volume, 1e-9)

	// prices are untouched
	for i := range bars {
		assert.Equal(t, bars[i].Close, out[i].Close)
	}
}

func TestLiquidityDryUpFloor(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 101)
	g := NewGenerator(Params{DryUpWindow: 2, DryUpFloor: 0.5}, 1)

	out, err := g.Generate(bars, LiquidityDryUp)
	assert.NoError(t, err)
	assert.InDelta(t, 750, out[0].Volume, 1e-9)
	assert.InDelta(t, 500, out[1].Volume, 1e-9)
}

func TestCorrelationBreakdownNeedsTwoSeries(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 103, 98)
	g := NewGenerator(DefaultParams(), 1)

	_, err := g.Generate(bars, CorrelationBreakdown)
	assert.ErrorIs(t, err, ErrUnsupportedScenario)

	_, err = g.GenerateSet([][]market.Bar{bars}, CorrelationBreakdown)
	assert.ErrorIs(t, err, ErrUnsupportedScenario)
}

func TestCorrelationBreakdownBlendsTowardMean(t *testing.T) {
	t.Parallel()

	// full blend: both series take the cross-sectional mean return
	a := seriesFrom(100, 110)
	b := seriesFrom(200, 200)
	g := NewGenerator(Params{CorrelationBlend: 1.0}, 1)

	out, err := g.GenerateSet([][]market.Bar{a, b}, CorrelationBreakdown)
	assert.NoError(t, err)
	assert.Len(t, out, 2)

	// mean of +10% and 0% is +5%
	assert.InDelta(t, 105, out[0][1].Close, 1e-9)
	assert.InDelta(t, 210, out[1][1].Close, 1e-9)
	assertValidSeries(t, out[0])
	assertValidSeries(t, out[1])
}

func TestGenerateSetValidation(t *testing.T) {
	t.Parallel()

	g := NewGenerator(DefaultParams(), 1)

	_, err := g.GenerateSet(nil, Baseline)
	assert.ErrorIs(t, err, market.ErrInvalidInput)

	a := seriesFrom(100, 101, 102)
	b := seriesFrom(200, 201)
	_, err = g.GenerateSet([][]market.Bar{a, b}, Baseline)
	assert.ErrorIs(t, err, market.ErrInvalidInput)
}

func TestGenerateRejectsInvalidSeries(t *testing.T) {
	t.Parallel()

	g := NewGenerator(DefaultParams(), 1)
	_, err := g.Generate(nil, Baseline)
	assert.ErrorIs(t, err, market.ErrInvalidInput)
}

func TestAllKindsPreserveBarInvariant(t *testing.T) {
	t.Parallel()

	bars := seriesFrom(100, 104, 98, 103, 99, 107, 111, 105, 102, 108,
		112, 109, 114, 110, 116, 113, 118, 115, 120, 117)
	g := NewGenerator(DefaultParams(), 7)

	for _, k := range Kinds() {
		if k == CorrelationBreakdown {
			continue
		}
		out, err := g.Generate(bars, k)
		assert.NoError(t, err, k.String())
		assert.Len(t, out, len(bars), k.String())
		assert.NoError(t, market.ValidateSeries(out), k.String())
	}
}
