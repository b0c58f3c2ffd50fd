// Package signal defines the trade-signal series produced by an external
// strategy and consumed read-only by the simulation engine.
package signal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantsim/market"
)

// Direction is the action a signal requests. Hold is the zero value so an
// unset signal never opens a position.
type Direction int

const (
	Hold Direction = iota
	LongEntry
	LongExit
	ShortEntry
	ShortExit
)

var directionNames = map[Direction]string{
	Hold:       "hold",
	LongEntry:  "long-entry",
	LongExit:   "long-exit",
	ShortEntry: "short-entry",
	ShortExit:  "short-exit",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection maps the wire spelling ("long-entry", "hold", ...) back to
// a Direction.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return Hold, fmt.Errorf("%w: unknown signal direction %q", market.ErrInvalidInput, s)
}

// Signal is one strategy decision, aligned 1:1 with a price bar by
// timestamp. Strength is a conviction score in [0,100]; the engine may use
// it for sizing but never for direction.
type Signal struct {
	Time      time.Time
	Direction Direction
	Strength  float64
}

// Validate checks timestamps strictly increase and strengths stay in
// [0,100].
func Validate(sigs []Signal) error {
	for i, s := range sigs {
		if s.Strength < 0 || s.Strength > 100 {
			return fmt.Errorf("%w: signal %d strength %g outside [0,100]", market.ErrInvalidInput, i, s.Strength)
		}
		if i > 0 && !s.Time.After(sigs[i-1].Time) {
			return fmt.Errorf("%w: signal timestamps not strictly increasing at index %d", market.ErrInvalidInput, i)
		}
	}
	return nil
}

// CheckAligned verifies the signal series matches the bar series one-to-one
// by timestamp. The engine refuses to run on misaligned input rather than
// guessing at a join.
func CheckAligned(bars []market.Bar, sigs []Signal) error {
	if len(bars) != len(sigs) {
		return fmt.Errorf("%w: %d bars but %d signals", market.ErrInvalidInput, len(bars), len(sigs))
	}
	for i := range bars {
		if !bars[i].Time.Equal(sigs[i].Time) {
			return fmt.Errorf("%w: bar/signal timestamp mismatch at index %d (%s vs %s)",
				market.ErrInvalidInput, i,
				bars[i].Time.Format(time.RFC3339), sigs[i].Time.Format(time.RFC3339))
		}
	}
	return nil
}
