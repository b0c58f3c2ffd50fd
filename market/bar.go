// Package market defines the price-series data contract consumed by the
// simulation engine: OHLCV bars and the validation rules every series must
// satisfy before a run starts.
package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks malformed input: broken OHLC ordering, non-increasing
// timestamps, negative volume, misaligned series. Callers match it with
// errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Bar is one OHLCV sample for a fixed time interval.
type Bar struct {
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume float64
}

// Validate checks the intrabar price ordering: High must be the top of the
// bar, Low the bottom, and volume cannot be negative.
func (b Bar) Validate() error {
	hi := b.Open
	if b.Close > hi {
		hi = b.Close
	}
	lo := b.Open
	if b.Close < lo {
		lo = b.Close
	}
	if b.High < hi || b.Low > lo {
		return fmt.Errorf("%w: bar %s violates high >= open/close >= low (o=%g h=%g l=%g c=%g)",
			ErrInvalidInput, b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: bar %s has negative volume %g", ErrInvalidInput, b.Time.Format(time.RFC3339), b.Volume)
	}
	return nil
}

// Range returns the intrabar high-low span.
func (b Bar) Range() float64 { return b.High - b.Low }

// SpreadProxy is the bar range relative to its close, used by the
// kill-switch as a bid/ask spread stand-in when no quote data exists.
func (b Bar) SpreadProxy() float64 {
	if b.Close == 0 {
		return 0
	}
	return (b.High - b.Low) / b.Close
}

// ValidateSeries checks a whole series: non-empty, strictly increasing
// timestamps, and every bar individually valid.
func ValidateSeries(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: empty price series", ErrInvalidInput)
	}
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d (%s then %s)",
				ErrInvalidInput, i, bars[i-1].Time.Format(time.RFC3339), b.Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Returns computes close-to-close simple returns. The result has len(bars)-1
// entries; bars with a zero previous close produce a zero return rather than
// an Inf.
func Returns(bars []Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, (bars[i].Close-prev)/prev)
	}
	return rets
}
