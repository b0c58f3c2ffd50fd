// Package stats computes risk and performance statistics over a finished
// equity curve, return series, or closed-trade log. Every function is pure
// and stateless.
//
// Numerical degeneracy is not an error: a zero-volatility Sharpe or a
// zero-drawdown Calmar returns a documented sentinel (signed Inf, or 0 when
// the numerator is also zero) instead of NaN. Too few samples, however, is
// an error: quantile estimates from a handful of points are misleading, so
// VaR and CVaR return ErrInsufficientData below the minimum sample count.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rustyeddy/quantsim/portfolio"
)

// ErrInsufficientData is returned by statistics that need a minimum sample
// count. It aborts only that computation, never a whole run.
var ErrInsufficientData = errors.New("insufficient data")

// DefaultMinSamples is the minimum return count for quantile estimates.
const DefaultMinSamples = 20

// VaR computes the empirical Value-at-Risk at the given confidence level
// (0.95 means the 5th percentile of returns). minSamples <= 0 falls back to
// DefaultMinSamples.
func VaR(returns []float64, confidence float64, minSamples int) (float64, error) {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	if len(returns) < minSamples {
		return 0, fmt.Errorf("%w: VaR needs %d returns, got %d", ErrInsufficientData, minSamples, len(returns))
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("confidence must be in (0,1), got %g", confidence)
	}
	return quantile(returns, 1-confidence), nil
}

// CVaR computes the Conditional Value-at-Risk (expected shortfall): the mean
// of all returns at or below the VaR threshold.
func CVaR(returns []float64, confidence float64, minSamples int) (float64, error) {
	threshold, err := VaR(returns, confidence, minSamples)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, r := range returns {
		if r <= threshold {
			sum += r
			n++
		}
	}
	if n == 0 {
		// Interpolated quantile can sit below every sample; the tail is
		// then just the worst observation.
		return threshold, nil
	}
	return sum / float64(n), nil
}

// Sharpe is the annualized mean/stddev ratio of per-bar returns.
// Zero volatility returns +Inf or -Inf matching the sign of the mean, and 0
// when the mean is also zero.
func Sharpe(returns []float64, barsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	m := mean(returns)
	sd := stddev(returns, m)
	if sd == 0 {
		return sentinel(m)
	}
	return m / sd * math.Sqrt(barsPerYear)
}

// Sortino is Sharpe with only downside deviation (returns below target) in
// the denominator. No downside observations yields the same sentinel rule
// applied to the mean excess return.
func Sortino(returns []float64, target, barsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < target {
			downside = append(downside, r)
		}
	}
	excess := mean(returns) - target
	if len(downside) == 0 {
		return sentinel(excess)
	}
	dm := mean(downside)
	sd := stddev(downside, dm)
	if sd == 0 {
		return sentinel(excess)
	}
	return excess / sd * math.Sqrt(barsPerYear)
}

// Calmar is annualized return over absolute max drawdown of the compounded
// return path. Zero drawdown yields +Inf for a positive annualized return,
// 0 otherwise.
func Calmar(returns []float64, barsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	equity := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (equity - peak) / peak; dd < maxDD {
				maxDD = dd
			}
		}
	}
	ann := AnnualizedReturn(equity-1, len(returns), barsPerYear)
	if maxDD == 0 {
		if ann > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return ann / -maxDD
}

// AnnualizedReturn compounds a total return observed over n bars to a
// one-year horizon.
func AnnualizedReturn(totalReturn float64, bars int, barsPerYear float64) float64 {
	if bars <= 0 || barsPerYear <= 0 || totalReturn <= -1 {
		return 0
	}
	years := float64(bars) / barsPerYear
	return math.Pow(1+totalReturn, 1/years) - 1
}

// EquityReturns converts an equity curve to per-bar simple returns.
func EquityReturns(curve []portfolio.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, (curve[i].Equity-prev)/prev)
	}
	return rets
}

// MaxDrawdown returns the deepest drawdown on the curve as a fraction <= 0.
func MaxDrawdown(curve []portfolio.EquityPoint) float64 {
	var maxDD float64
	for _, p := range curve {
		if p.Drawdown < maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator). A single
// observation has zero deviation.
func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func sentinel(numerator float64) float64 {
	switch {
	case numerator > 0:
		return math.Inf(1)
	case numerator < 0:
		return math.Inf(-1)
	default:
		return 0
	}
}

// quantile is the linear-interpolation empirical quantile of xs at q in
// [0,1].
func quantile(xs []float64, q float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
