// Package riskzone computes stop-loss and take-profit levels for a position
// at entry time. The engine asks a Planner once per entry; from then on the
// levels are fixed on the trade.
package riskzone

import (
	"fmt"
	"math"

	"github.com/rustyeddy/quantsim/market"
)

// ATR calculates the Average True Range over the given period using
// Wilder's smoothing. Needs period+1 bars because the true range looks at
// the previous close.
func ATR(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period+1, len(bars))
	}

	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trs = append(trs, trueRange(bars[i], bars[i-1]))
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr := sum / float64(period)

	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr, nil
}

func trueRange(current, previous market.Bar) float64 {
	hc := math.Abs(current.High - previous.Close)
	lc := math.Abs(current.Low - previous.Close)
	return math.Max(current.Range(), math.Max(hc, lc))
}
